package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"edupath_backend/internal/config"
	"edupath_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aiServiceFor(baseURL string) *AIService {
	return NewAIService(config.AIConfig{BaseURL: baseURL, APIKey: "test", Model: "test-model"})
}

func TestChatMapsUpstream5xxToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := aiServiceFor(srv.URL).Chat(context.Background(), "什么是指针？", "", nil)
	assert.ErrorIs(t, err, util.ErrUnavailable)
}

func TestChatMapsNetworkFailureToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // 端口已关闭，连接必然失败

	_, err := aiServiceFor(srv.URL).Chat(context.Background(), "什么是指针？", "", nil)
	assert.ErrorIs(t, err, util.ErrUnavailable)
}

func TestChatUpstream4xxIsNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := aiServiceFor(srv.URL).Chat(context.Background(), "什么是指针？", "", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, util.ErrUnavailable)
}

func TestGenerateMcqParsesFencedJSON(t *testing.T) {
	content := "```json\n[{\"Q\":1,\"level\":\"easy\",\"question\":\"1+1=?\",\"options\":[\"1\",\"2\"],\"answer\":\"2\"}]\n```"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
	defer srv.Close()

	questions, err := aiServiceFor(srv.URL).GenerateMcq(context.Background(), "加法", 1)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "2", questions[0].Answer)
}
