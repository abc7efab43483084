package util

import (
	"math"
	"time"
)

// DateOf 截断到自然日零点（保留时区）
func DateOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DaysBetween 两个日期相差的自然日数，from 在前为正。
// 按四舍五入抹平夏令时造成的 23/25 小时天。
func DaysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// DayRange 指定日期当天的 [start, end) 区间
func DayRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := DateOf(t, loc)
	return start, start.AddDate(0, 0, 1)
}
