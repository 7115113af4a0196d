package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallLimiterCooldown(t *testing.T) {
	l := NewCallLimiter(100, 1000, 10*time.Second)
	now := time.Now()

	assert.True(t, l.Allow("a", now))
	l.Record("a", now)

	assert.False(t, l.Allow("a", now.Add(5*time.Second)), "within cooldown")
	assert.True(t, l.Allow("b", now.Add(5*time.Second)), "cooldown is per agent")
	assert.True(t, l.Allow("a", now.Add(11*time.Second)))
}

func TestCallLimiterMinuteCap(t *testing.T) {
	l := NewCallLimiter(3, 1000, 0)
	now := time.Now()
	for i := 0; i < 3; i++ {
		require.True(t, l.Allow("a", now))
		l.Record("a", now)
		now = now.Add(time.Second)
	}
	assert.False(t, l.Allow("a", now))

	// The window slides.
	assert.True(t, l.Allow("a", now.Add(2*time.Minute)))
}

type flakyProvider struct {
	calls  int
	errs   []error
	gotReq []Request
}

func (f *flakyProvider) Complete(_ context.Context, req Request) (string, error) {
	f.gotReq = append(f.gotReq, req)
	f.calls++
	if f.calls <= len(f.errs) && f.errs[f.calls-1] != nil {
		return "", f.errs[f.calls-1]
	}
	return "ok", nil
}

func TestCompleteWithRetryReducesParams(t *testing.T) {
	p := &flakyProvider{errs: []error{&StatusError{Code: 503}}}

	out, err := CompleteWithRetry(context.Background(), p, nil, Request{Temperature: 1.0, MaxTokens: 400})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	require.Len(t, p.gotReq, 2)
	assert.Equal(t, 0.7, p.gotReq[1].Temperature, "retry runs with reduced parameters")
	assert.Equal(t, 128, p.gotReq[1].MaxTokens)
}

func TestCompleteWithRetryGivesUpAfterOneRetry(t *testing.T) {
	p := &flakyProvider{errs: []error{&StatusError{Code: 503}, &StatusError{Code: 503}}}
	_, err := CompleteWithRetry(context.Background(), p, nil, Request{})
	assert.Error(t, err)
	assert.Equal(t, 2, p.calls)
}

func TestCompleteWithRetryNoRetryOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &flakyProvider{errs: []error{context.Canceled}}
	_, err := CompleteWithRetry(ctx, p, nil, Request{})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, p.calls)
}

func TestRetryableClassification(t *testing.T) {
	assert.True(t, retryable(&StatusError{Code: 429}))
	assert.True(t, retryable(&StatusError{Code: 500}))
	assert.False(t, retryable(&StatusError{Code: 400}))
	assert.False(t, retryable(context.Canceled))
	assert.True(t, retryable(errors.New("connection reset")))
}
