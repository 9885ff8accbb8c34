package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDailyWindowStart(t *testing.T) {
	ts := time.Date(2025, 3, 15, 23, 59, 59, 999999999, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), DailyWindowStart(ts))

	midnight := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, midnight, DailyWindowStart(midnight))
}

func TestDailyWindowStartNormalizesZone(t *testing.T) {
	// UTC+8 的 3 月 16 日早上，仍属于 UTC 的 3 月 15 日
	cst := time.FixedZone("CST", 8*3600)
	ts := time.Date(2025, 3, 16, 7, 0, 0, 0, cst)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), DailyWindowStart(ts))
}

func TestMonthlyWindowStart(t *testing.T) {
	ts := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), MonthlyWindowStart(ts))

	first := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, first, MonthlyWindowStart(first))
}

func TestWindowStartsAreStable(t *testing.T) {
	// 同窗口内任意时刻归一到同一个起点，跨窗口则不同
	a := time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)
	b := time.Date(2025, 6, 10, 22, 30, 0, 0, time.UTC)
	c := time.Date(2025, 6, 11, 0, 0, 1, 0, time.UTC)

	assert.True(t, DailyWindowStart(a).Equal(DailyWindowStart(b)))
	assert.False(t, DailyWindowStart(b).Equal(DailyWindowStart(c)))
	assert.True(t, MonthlyWindowStart(a).Equal(MonthlyWindowStart(c)))
}
