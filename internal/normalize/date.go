// Package normalize 民国日期与字段清理等纯函数
package normalize

import (
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"time"
)

// EraOffset 民国纪年与公元纪年之差
const EraOffset = 1911

var digitsPattern = regexp.MustCompile(`\d+`)

// ParseLocalDate 解析以非数字分隔的民国日期,例如 "113/01/05"、"113年1月"
// 只有两组数字时日期取 1 日,无法解析时返回 false
func ParseLocalDate(s string) (time.Time, bool) {
	groups := digitsPattern.FindAllString(s, 3)
	if len(groups) < 2 {
		return time.Time{}, false
	}
	nums := make([]int, 0, 3)
	for _, g := range groups {
		n, err := strconv.Atoi(g)
		if err != nil {
			return time.Time{}, false
		}
		nums = append(nums, n)
	}
	year, month, day := nums[0]+EraOffset, nums[1], 1
	if len(nums) == 3 {
		day = nums[2]
	}
	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date 会把 2 月 30 日顺延到 3 月,这里视为非法日期
	if d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// FormatLocalDate 转为民国日期,slash 为 true 时以 "/" 分隔
func FormatLocalDate(d time.Time, slash bool) string {
	sep := ""
	if slash {
		sep = "/"
	}
	return fmt.Sprintf("%d%s%02d%s%02d", d.Year()-EraOffset, sep, int(d.Month()), sep, d.Day())
}

// DateRange 生成 [start, end] 区间内每隔 stepDays 天的日期,包含两端
func DateRange(start, end time.Time, stepDays int) iter.Seq[time.Time] {
	if stepDays < 1 {
		stepDays = 1
	}
	return func(yield func(time.Time) bool) {
		for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, stepDays) {
			if !yield(cur) {
				return
			}
		}
	}
}

// TotalDays 区间内的步数,用于进度显示
func TotalDays(start, end time.Time, stepDays int) int {
	if stepDays < 1 {
		stepDays = 1
	}
	if end.Before(start) {
		return 0
	}
	days := int(end.Sub(start).Hours()/24) + 1
	return (days + stepDays - 1) / stepDays
}

// Day 截断到当天 0 点 (UTC),比较日期时使用
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
