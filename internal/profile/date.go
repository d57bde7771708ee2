// internal/profile/date.go
//
// 本檔定義出生日期 Date：僅含年月日的日曆日期，不帶時區與時間。
// 文字格式為 "m/d/yyyy"（例如 "2/19/2000"），與輸入層的慣用格式一致。

package profile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadDate 代表日期字串無法解析或不是合法的日曆日期。
var ErrBadDate = errors.New("invalid calendar date")

// Date is a calendar date without time of day.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// NewDate 以年月日建立日期；不做驗證，需要時呼叫 IsValid。
func NewDate(year, month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate 解析 "m/d/yyyy" 字串，並拒絕不存在的日期（如 2/30）。
func ParseDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	var nums [3]int
	for i, p := range parts {
		if !digits(p) {
			return Date{}, fmt.Errorf("%w: %q", ErrBadDate, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrBadDate, s)
		}
		nums[i] = n
	}
	d := Date{Year: nums[2], Month: nums[0], Day: nums[1]}
	if !d.IsValid() {
		return Date{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	return d, nil
}

// digits 只接受非空的純數字，排除 Atoi 允許的正負號。
func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsValid 檢查月份範圍與當月天數（含閏年二月）。
func (d Date) IsValid() bool {
	if d.Year < 1 || d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	return d.Day <= daysIn(d.Month, d.Year)
}

func daysIn(month, year int) int {
	switch month {
	case 2:
		if isLeap(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Compare 依年、月、日的時間先後比較，回傳 -1、0 或 1。
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(d.Month - other.Month)
	default:
		return sign(d.Day - other.Day)
	}
}

func (d Date) String() string {
	return fmt.Sprintf("%d/%d/%d", d.Month, d.Day, d.Year)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
