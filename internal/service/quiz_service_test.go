package service

import (
	"testing"

	"edupath_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func mcq(answers ...string) []model.McqQuestion {
	qs := make([]model.McqQuestion, len(answers))
	for i, a := range answers {
		qs[i] = model.McqQuestion{Question: "q", Options: []string{a, "干扰项"}, Answer: a}
	}
	return qs
}

func TestScoreExactMatch(t *testing.T) {
	svc := &QuizService{}
	questions := mcq("切片", "映射", "通道", "接口")

	result := svc.Score(questions, []string{"切片", "映射", "通道", "接口"})
	assert.Equal(t, 4, result.CorrectAnswers)
	assert.Equal(t, 100, result.Percentage)
}

func TestScoreThreeOfFourIsSeventyFive(t *testing.T) {
	svc := &QuizService{}
	questions := mcq("a", "b", "c", "d")

	result := svc.Score(questions, []string{"a", "b", "c", "x"})
	assert.Equal(t, 3, result.CorrectAnswers)
	assert.Equal(t, 4, result.TotalQuestions)
	// 3/4 = 75，恰好到达掌握门槛
	assert.Equal(t, model.MasteryThreshold, result.Percentage)
}

func TestScoreIsCaseSensitive(t *testing.T) {
	svc := &QuizService{}
	questions := mcq("Goroutine")

	// 答案键按原文比对，不折叠大小写、不裁剪空白
	result := svc.Score(questions, []string{"goroutine"})
	assert.Equal(t, 0, result.CorrectAnswers)

	result = svc.Score(questions, []string{"Goroutine "})
	assert.Equal(t, 0, result.CorrectAnswers)
}

func TestScoreHandlesMissingAnswers(t *testing.T) {
	svc := &QuizService{}
	questions := mcq("a", "b", "c")

	// 少交的题按错计
	result := svc.Score(questions, []string{"a"})
	assert.Equal(t, 1, result.CorrectAnswers)
	assert.Equal(t, 33, result.Percentage)

	// 多交的答案忽略
	result = svc.Score(questions, []string{"a", "b", "c", "d", "e"})
	assert.Equal(t, 3, result.CorrectAnswers)
	assert.Equal(t, 100, result.Percentage)
}

func TestScoreEmptyQuiz(t *testing.T) {
	svc := &QuizService{}

	result := svc.Score(nil, nil)
	assert.Equal(t, 0, result.TotalQuestions)
	assert.Equal(t, 0, result.Percentage)
}

func TestScoreRoundsPercentage(t *testing.T) {
	svc := &QuizService{}
	questions := mcq("a", "b", "c", "d", "e", "f")

	// 1/6 = 16.67 → 17
	result := svc.Score(questions, []string{"a"})
	assert.Equal(t, 17, result.Percentage)

	// 2/6 = 33.33 → 33
	result = svc.Score(questions, []string{"a", "b"})
	assert.Equal(t, 33, result.Percentage)
}
