package attendance

import (
	"math"
	"strconv"
	"strings"

	"github.com/LouYuanbo1/attendancecrawler/internal/domain/model"
	"github.com/shopspring/decimal"
)

const roundPlaces int32 = 2

// parsePercent 非数字, 非有限值或超出 float64 范围时按 0 处理
func parsePercent(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Aggregate 解析失败的出勤率按 0 计入, 不会中断整批.
// 平均值用十进制计算并四舍五入(远离零)到两位小数, 没有出勤率时返回 false.
func Aggregate(rawNames, rawPercents []string) (*model.AttendanceReport, bool) {
	if len(rawPercents) == 0 {
		return nil, false
	}

	sum := decimal.Zero
	percentages := make([]float64, 0, len(rawPercents))
	for _, raw := range rawPercents {
		f := parsePercent(raw)
		// NewFromFloat 取最短表示, 10.01 不会变成 10.0099...
		sum = sum.Add(decimal.NewFromFloat(f))
		percentages = append(percentages, f)
	}

	mean := sum.DivRound(decimal.NewFromInt(int64(len(rawPercents))), 16).Round(roundPlaces)
	attendance, _ := mean.Float64()
	if math.IsInf(attendance, 0) {
		attendance = 0
	}

	courses := make([]string, 0, len(rawNames))
	for _, name := range rawNames {
		courses = append(courses, strings.TrimSpace(name))
	}

	return &model.AttendanceReport{
		Courses:     courses,
		Percentages: percentages,
		Attendance:  attendance,
	}, true
}
