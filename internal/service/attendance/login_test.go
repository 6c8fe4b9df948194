package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LouYuanbo1/attendancecrawler/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var creds = model.Credentials{ID: "22691A0572", Secret: "s3cret"}

func TestLoginOrder(t *testing.T) {
	p := testPortal()
	s := newFakeSession()

	require.NoError(t, NewSequencer(p).Login(context.Background(), s, creds))
	assert.Equal(t, []string{
		"navigate " + p.URL,
		"click " + p.StudentLink,
		"fill " + p.UserIDInput + " 22691A0572",
		"fill " + p.PasswordInput + " s3cret",
		"click " + p.SubmitButton,
	}, s.Actions())
}

func TestLoginElementTimeout(t *testing.T) {
	p := testPortal()
	p.StepTimeout = 20 * time.Millisecond
	s := newFakeSession()
	s.block[p.PasswordInput] = true

	err := NewSequencer(p).Login(context.Background(), s, creds)
	var ete *ElementTimeoutError
	require.ErrorAs(t, err, &ete)
	assert.Equal(t, StepPassword, ete.Step)
	assert.Equal(t, KindElementTimeout, Classify(err))
	// 超时之后不再继续后面的步骤
	assert.NotContains(t, s.Actions(), "click "+p.SubmitButton)
}

func TestLoginNavigationFailure(t *testing.T) {
	p := testPortal()
	s := newFakeSession()
	s.fail[p.URL] = errBoom

	err := NewSequencer(p).Login(context.Background(), s, creds)
	assert.ErrorIs(t, err, ErrNavigation)
	assert.ErrorIs(t, err, errBoom)
	assert.Len(t, s.Actions(), 1)

	p.StepTimeout = 20 * time.Millisecond
	s = newFakeSession()
	s.block[p.URL] = true
	err = NewSequencer(p).Login(context.Background(), s, creds)
	assert.ErrorIs(t, err, ErrNavigation)
	assert.Equal(t, KindNavigation, Classify(err))
}

func TestLoginParentDeadlineIsNotElementTimeout(t *testing.T) {
	p := testPortal()
	p.StepTimeout = time.Second
	s := newFakeSession()
	s.block[p.StudentLink] = true

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := NewSequencer(p).Login(ctx, s, creds)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	var ete *ElementTimeoutError
	assert.False(t, errors.As(err, &ete))
}

func TestSettleDelayHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, settle(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	assert.NoError(t, settle(context.Background(), 0))
	assert.NoError(t, settle(context.Background(), time.Millisecond))
}

func TestExtract(t *testing.T) {
	p := testPortal()
	s := newFakeSession()
	s.texts[p.AttendanceRate] = []string{"90", "80", "70"}
	s.texts[p.CourseNames] = []string{"A", "B"}

	raw, err := NewExtractor(p).Extract(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, raw.Names)
	assert.Equal(t, []string{"90", "80", "70"}, raw.Percents)
	assert.True(t, raw.Mismatched())
}

func TestExtractNoNodes(t *testing.T) {
	p := testPortal()
	s := newFakeSession()
	s.texts[p.AttendanceRate] = []string{"90"}

	_, err := NewExtractor(p).Extract(context.Background(), s)
	assert.ErrorIs(t, err, ErrExtract)
	assert.Contains(t, err.Error(), "course_names")

	p.StepTimeout = 20 * time.Millisecond
	s = newFakeSession()
	s.block[p.AttendanceRate] = true
	_, err = NewExtractor(p).Extract(context.Background(), s)
	assert.ErrorIs(t, err, ErrExtract)
	assert.Equal(t, KindExtract, Classify(err))
}
