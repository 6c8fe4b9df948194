package attendance

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/LouYuanbo1/attendancecrawler/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	testCases := []struct {
		name        string
		names       []string
		percents    []string
		percentages []float64
		attendance  float64
	}{
		{
			name:        "mean of two",
			names:       []string{"A", "B"},
			percents:    []string{"85.5", "92.0"},
			percentages: []float64{85.5, 92},
			attendance:  88.75,
		},
		{
			name:        "malformed counts as zero",
			names:       []string{"A", "B", "C"},
			percents:    []string{"80", "N/A", ""},
			percentages: []float64{80, 0, 0},
			attendance:  26.67,
		},
		{
			name:        "half rounds away from zero",
			names:       []string{"A", "B"},
			percents:    []string{"10.00", "10.01"},
			percentages: []float64{10, 10.01},
			attendance:  10.01,
		},
		{
			name:        "below half rounds down",
			names:       []string{"A", "B"},
			percents:    []string{"10.00", "10.009"},
			percentages: []float64{10, 10.009},
			attendance:  10.00,
		},
		{
			name:        "huge exponent counts as zero",
			names:       []string{"A", "B"},
			percents:    []string{"50", "1e999999999"},
			percentages: []float64{50, 0},
			attendance:  25,
		},
		{
			name:        "overflow counts as zero",
			names:       []string{"A", "B"},
			percents:    []string{"50", "1e400"},
			percentages: []float64{50, 0},
			attendance:  25,
		},
		{
			name:        "non finite counts as zero",
			names:       []string{"A", "B", "C"},
			percents:    []string{"NaN", "+Inf", "60"},
			percentages: []float64{0, 0, 60},
			attendance:  20,
		},
		{
			name:        "whitespace trimmed",
			names:       []string{"  Maths\n"},
			percents:    []string{"\t75 "},
			percentages: []float64{75},
			attendance:  75,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var (
				report *model.AttendanceReport
				ok     bool
			)
			done := make(chan struct{})
			go func() {
				defer close(done)
				report, ok = Aggregate(tc.names, tc.percents)
			}()
			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Fatal("Aggregate 没有返回")
			}
			require.True(t, ok)
			assert.Equal(t, tc.percentages, report.Percentages)
			assert.Equal(t, tc.attendance, report.Attendance)
			assert.Len(t, report.Courses, len(tc.names))
		})
	}
}

func TestAggregateTrimsNames(t *testing.T) {
	report, ok := Aggregate([]string{"  Maths\n", "Physics "}, []string{"1", "2"})
	require.True(t, ok)
	assert.Equal(t, []string{"Maths", "Physics"}, report.Courses)
}

func TestAggregateWithoutPercentages(t *testing.T) {
	report, ok := Aggregate(nil, nil)
	assert.False(t, ok)
	assert.Nil(t, report)

	report, ok = Aggregate([]string{"A", "B"}, []string{})
	assert.False(t, ok)
	assert.Nil(t, report)
}

func TestAggregateKeepsMismatchedCounts(t *testing.T) {
	report, ok := Aggregate([]string{"A"}, []string{"50", "100"})
	require.True(t, ok)
	assert.Equal(t, []string{"A"}, report.Courses)
	assert.Equal(t, 75.0, report.Attendance)
	assert.Len(t, report.Percentages, 2)
}

func TestAggregateResultAlwaysEncodes(t *testing.T) {
	report, ok := Aggregate([]string{"A", "B"}, []string{"1.7976931348623157e308", "1e400"})
	require.True(t, ok)
	_, err := json.Marshal(report)
	require.NoError(t, err)
}
