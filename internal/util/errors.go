package util

import "errors"

var (
	ErrNotFound                 = errors.New("resource not found")
	ErrStudentNotFound          = errors.New("student not found")
	ErrChapterNotFound          = errors.New("chapter not found")
	ErrLearningPathNotFound     = errors.New("learning path not found")
	ErrLimitExceeded            = errors.New("usage limit exceeded")
	ErrSubscriptionRequired     = errors.New("subscription required")
	ErrSubscriptionExpired      = errors.New("subscription expired")
	ErrPreviousModuleIncomplete = errors.New("previous module incomplete")
	ErrQuizNotGenerated         = errors.New("no generated quiz for chapter")
	ErrInvalidQuizResult        = errors.New("invalid quiz result counts")
	ErrEmailRegistered          = errors.New("该邮箱已被注册")
	ErrPermissionDenied         = errors.New("permission denied")
	ErrUnavailable              = errors.New("upstream service temporarily unavailable")
)
