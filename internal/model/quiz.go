package model

import "time"

// McqQuestion AI 生成的单选题，Answer 即选项原文，判分按位比对
// swagger:model McqQuestion
type McqQuestion struct {
	Q        int      `json:"Q"`
	Level    string   `json:"level"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// GeneratedQuiz 最近一次为章节生成的试卷，缓存在 Redis 中供服务端判分
type GeneratedQuiz struct {
	StudentID   string        `json:"studentId"`
	ChapterID   string        `json:"chapterId"`
	Questions   []McqQuestion `json:"questions"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

// QuizScoreResult 评卷结果
type QuizScoreResult struct {
	CorrectAnswers int `json:"correctAnswers"`
	TotalQuestions int `json:"totalQuestions"`
	Percentage     int `json:"percentage"`
}
