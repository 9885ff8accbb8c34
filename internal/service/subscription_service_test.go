package service

import (
	"context"
	"testing"
	"time"

	"edupath_backend/internal/model"
	"edupath_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type stubUserFinder struct {
	known map[string]*model.User
}

func (f *stubUserFinder) FindByStudentUniqueID(studentID string) (*model.User, error) {
	u, ok := f.known[studentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func TestLimitsFromSubscription(t *testing.T) {
	sub := &model.Subscription{
		PlanType:        "premium",
		DailyChatLimit:  50,
		MonthlyMcqLimit: 200,
	}

	limits := Limits(sub)
	assert.Equal(t, "premium", limits.PlanType)
	assert.Equal(t, 50, limits.DailyChatLimit)
	assert.Equal(t, 200, limits.MonthlyMcqLimit)
}

func TestLimitsWithoutSubscriptionAreZero(t *testing.T) {
	limits := Limits(nil)
	assert.Equal(t, 0, limits.DailyChatLimit)
	assert.Equal(t, 0, limits.MonthlyMcqLimit)
	assert.Empty(t, limits.PlanType)
}

func TestApplyPaymentRejectsUnknownStudent(t *testing.T) {
	svc := NewSubscriptionService(nil, &stubUserFinder{}, nil)

	_, err := svc.ApplyPayment(context.Background(), PaymentWebhookRequest{
		StudentID:       "no-such-student",
		LearningPathID:  "path-1",
		PlanType:        "premium",
		DailyChatLimit:  50,
		MonthlyMcqLimit: 200,
		ValidFrom:       time.Now(),
		ValidUntil:      time.Now().Add(30 * 24 * time.Hour),
	})
	assert.ErrorIs(t, err, util.ErrStudentNotFound)
}

func TestSubscriptionActiveWindow(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	sub := &model.Subscription{ValidFrom: from, ValidUntil: until}

	// 左闭右开：validFrom 当刻生效，validUntil 当刻失效
	assert.False(t, sub.Active(from.Add(-time.Second)))
	assert.True(t, sub.Active(from))
	assert.True(t, sub.Active(until.Add(-time.Second)))
	assert.False(t, sub.Active(until))
	assert.False(t, sub.Active(until.Add(time.Hour)))
}
