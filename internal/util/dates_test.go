package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf(t *testing.T) {
	loc := time.UTC
	at := time.Date(2024, 3, 15, 23, 59, 59, 0, loc)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, loc), DateOf(at, loc))

	// 跨时区换算后归到本地自然日
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	utcMidnight := time.Date(2024, 3, 15, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, ny), DateOf(utcMidnight, ny))
}

func TestDaysBetween(t *testing.T) {
	loc := time.UTC
	d1 := DateOf(time.Date(2024, 1, 5, 10, 0, 0, 0, loc), loc)
	d2 := DateOf(time.Date(2024, 1, 8, 3, 0, 0, 0, loc), loc)
	assert.Equal(t, 3, DaysBetween(d1, d2))
	assert.Equal(t, -3, DaysBetween(d2, d1))
	assert.Zero(t, DaysBetween(d1, d1))
}

func TestDaysBetween_DSTTransition(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2024-03-10 春令时切换，当天只有 23 小时，仍算 1 天
	before := DateOf(time.Date(2024, 3, 9, 12, 0, 0, 0, ny), ny)
	after := DateOf(time.Date(2024, 3, 10, 12, 0, 0, 0, ny), ny)
	assert.Equal(t, 1, DaysBetween(before, after))

	// 2024-11-03 冬令时切换，25 小时的天同样算 1 天
	before = DateOf(time.Date(2024, 11, 2, 12, 0, 0, 0, ny), ny)
	after = DateOf(time.Date(2024, 11, 3, 12, 0, 0, 0, ny), ny)
	assert.Equal(t, 1, DaysBetween(before, after))
}

func TestDayRange(t *testing.T) {
	loc := time.UTC
	start, end := DayRange(time.Date(2024, 1, 5, 15, 30, 0, 0, loc), loc)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2024, 1, 6, 0, 0, 0, 0, loc), end)
}
