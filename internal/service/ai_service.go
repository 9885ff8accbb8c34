package service

import (
	"bytes"
	"context"
	"edupath_backend/internal/config"
	"edupath_backend/internal/model"
	"edupath_backend/internal/util"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AIService 下游大模型服务的薄封装
// 配额检查通过之后才会调到这里，生成管线本身对引擎是黑盒
type AIService struct {
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *AIService) complete(ctx context.Context, messages []AIChatMessage) (string, error) {
	reqBody := map[string]interface{}{
		"model":    s.config.Model,
		"messages": messages,
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		// 网络层失败对调用方是可重试故障
		return "", fmt.Errorf("AI API unreachable: %v: %w", err, util.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return "", fmt.Errorf("AI API error (status %d): %w", resp.StatusCode, util.ErrUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", err
	}
	if completion.Error != nil {
		return "", fmt.Errorf("AI API error: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("AI API returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// Chat 单轮补全，history 为同一 session 的历史对话
func (s *AIService) Chat(ctx context.Context, query, chapterContext string, history []AIChatMessage) (string, error) {
	systemContent := "你是一个专业的学习平台助教，请结合学生正在学习的章节耐心回答问题。"
	if chapterContext != "" {
		systemContent = fmt.Sprintf("你是一个学习平台助教。请结合以下章节内容回答学生的问题：\n\n%s", chapterContext)
	}

	messages := make([]AIChatMessage, 0, len(history)+2)
	messages = append(messages, AIChatMessage{Role: "system", Content: systemContent})
	messages = append(messages, history...)
	messages = append(messages, AIChatMessage{Role: "user", Content: query})

	return s.complete(ctx, messages)
}

const mcqPrompt = `请根据以下章节内容出 %d 道单项选择题，输出一个 JSON 数组，不要输出任何其他文字。
每个元素的结构为 {"Q": 题号, "level": "easy|medium|hard", "question": "题干", "options": ["A...","B...","C...","D..."], "answer": "正确选项的原文"}。
answer 必须与 options 中某一项完全一致（判分按原文比对）。

章节内容：
%s`

// GenerateMcq 为章节生成一套单选题并解析为结构化题目
func (s *AIService) GenerateMcq(ctx context.Context, chapterContent string, count int) ([]model.McqQuestion, error) {
	if count <= 0 {
		count = 5
	}

	messages := []AIChatMessage{
		{Role: "system", Content: "你是一个出题引擎，只输出合法 JSON。"},
		{Role: "user", Content: fmt.Sprintf(mcqPrompt, count, chapterContent)},
	}

	raw, err := s.complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	// 容忍模型把 JSON 包在 markdown 代码块里
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var questions []model.McqQuestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &questions); err != nil {
		return nil, fmt.Errorf("解析生成的题目失败: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("AI 未生成任何题目")
	}
	return questions, nil
}
