package util

import "time"

// DailyWindowStart 返回 t 所在 UTC 日历日的零点
func DailyWindowStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthlyWindowStart 返回 t 所在 UTC 日历月的起点
func MonthlyWindowStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}
