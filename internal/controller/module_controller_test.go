package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"edupath_backend/internal/model"
	"edupath_backend/internal/service"
	"edupath_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeProgressStore struct {
	rows map[string]*model.ChapterProgress
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{rows: make(map[string]*model.ChapterProgress)}
}

func (s *fakeProgressStore) Find(studentID, chapterID string) (*model.ChapterProgress, error) {
	p, ok := s.rows[studentID+"/"+chapterID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *fakeProgressStore) Create(p *model.ChapterProgress) error {
	cp := *p
	s.rows[p.StudentID+"/"+p.ChapterID] = &cp
	return nil
}

func (s *fakeProgressStore) Save(p *model.ChapterProgress) error {
	return s.Create(p)
}

func (s *fakeProgressStore) ListByStudent(studentID string) ([]model.ChapterProgress, error) {
	var out []model.ChapterProgress
	for _, p := range s.rows {
		if p.StudentID == studentID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakeProgressStore) ListByStudentAndPath(studentID, learningPathID string) ([]model.ChapterProgress, error) {
	var out []model.ChapterProgress
	for _, p := range s.rows {
		if p.StudentID == studentID && p.LearningPathID == learningPathID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeChapterFinder struct{}

func (fakeChapterFinder) FindChapterByID(id string) (*model.Chapter, error) {
	if id != "ch-1" {
		return nil, gorm.ErrRecordNotFound
	}
	duration := 600
	return &model.Chapter{
		UUIDBase:       model.UUIDBase{ID: "ch-1"},
		LearningPathID: "path-1",
		VideoDuration:  &duration,
	}, nil
}

func newTestModuleController(store service.ProgressStore) *ModuleController {
	progress := service.NewProgressService(store, fakeChapterFinder{})
	return NewModuleController(nil, progress, nil)
}

func authedContext(t *testing.T, studentID, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	ctx.Request = httptest.NewRequest(method, target, reader)
	ctx.Request.Header.Set("Content-Type", "application/json")
	if studentID != "" {
		ctx.Set("user", &util.Claims{StudentID: studentID})
	}
	return ctx, w
}

func TestListProgressServesTokenIdentity(t *testing.T) {
	store := newFakeProgressStore()
	score := 80
	require.NoError(t, store.Create(&model.ChapterProgress{
		StudentID: "S1", ChapterID: "ch-1", LearningPathID: "path-1",
		State: model.ProgressCompleted, QuizScore: &score,
	}))
	require.NoError(t, store.Create(&model.ChapterProgress{
		StudentID: "S2", ChapterID: "ch-1", LearningPathID: "path-1",
		State: model.ProgressInProgress,
	}))

	c := newTestModuleController(store)

	// 不带 studentId 参数：身份只来自登录态
	ctx, w := authedContext(t, "S1", "GET", "/api/modules/progress", "")
	c.ListProgress(ctx)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success  bool `json:"success"`
		Progress []struct {
			ModuleID  string `json:"moduleId"`
			State     string `json:"state"`
			QuizScore *int   `json:"quizScore"`
		} `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// 只返回 token 对应学生的那一行：S2 在同一章节的进度不可见
	require.Len(t, resp.Progress, 1)
	assert.Equal(t, "ch-1", resp.Progress[0].ModuleID)
	assert.Equal(t, string(model.ProgressCompleted), resp.Progress[0].State)
	require.NotNil(t, resp.Progress[0].QuizScore)
	assert.Equal(t, 80, *resp.Progress[0].QuizScore)
}

func TestProgressEndpointsRejectMissingStudentClaim(t *testing.T) {
	c := newTestModuleController(newFakeProgressStore())

	ctx, w := authedContext(t, "", "GET", "/api/modules/progress", "")
	c.ListProgress(ctx)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	ctx, w = authedContext(t, "", "POST", "/api/modules/quiz-score", `{"chapterId":"ch-1","totalQuestions":4,"correctAnswers":3}`)
	c.RecordQuizScore(ctx)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecordQuizScoreIgnoresClientReportedScore(t *testing.T) {
	store := newFakeProgressStore()
	c := newTestModuleController(store)

	// 客户端自报 999 分，入库口径只认 correct/total
	ctx, w := authedContext(t, "S1", "POST", "/api/modules/quiz-score",
		`{"chapterId":"ch-1","score":999,"totalQuestions":4,"correctAnswers":3}`)
	c.RecordQuizScore(ctx)
	require.Equal(t, http.StatusOK, w.Code)

	p, err := store.Find("S1", "ch-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, p.QuizScore)
	assert.Equal(t, 75, *p.QuizScore)
}

func TestRecordQuizScoreRejectsInconsistentCounts(t *testing.T) {
	store := newFakeProgressStore()
	c := newTestModuleController(store)

	ctx, w := authedContext(t, "S1", "POST", "/api/modules/quiz-score",
		`{"chapterId":"ch-1","totalQuestions":4,"correctAnswers":9}`)
	c.RecordQuizScore(ctx)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	p, err := store.Find("S1", "ch-1")
	require.NoError(t, err)
	assert.Nil(t, p)
}
