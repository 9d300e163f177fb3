package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavecheck/surveypilot/pkg/logging"
)

type stubClient struct {
	resp  Response
	err   error
	calls int
}

func (s *stubClient) Complete(_ context.Context, _ Request) (Response, error) {
	s.calls++
	return s.resp, s.err
}

func TestFallbackClient_PrimarySucceeds(t *testing.T) {
	primary := &stubClient{resp: Response{Text: "primary"}}
	fallback := &stubClient{resp: Response{Text: "fallback"}}
	c := NewFallbackClient(primary, fallback, logging.New("error"))

	resp, err := c.Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "primary", resp.Text)
	assert.Zero(t, fallback.calls)
}

func TestFallbackClient_FallsBackOnError(t *testing.T) {
	primary := &stubClient{err: errors.New("boom")}
	fallback := &stubClient{resp: Response{Text: "fallback"}}
	c := NewFallbackClient(primary, fallback, logging.New("error"))

	resp, err := c.Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Text)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestFallbackClient_NoFallbackReturnsPrimaryError(t *testing.T) {
	primaryErr := errors.New("boom")
	primary := &stubClient{err: primaryErr}
	c := NewFallbackClient(primary, nil, logging.New("error"))

	_, err := c.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, primaryErr)
}

func TestFallbackClient_BothFailReturnsFallbackError(t *testing.T) {
	primary := &stubClient{err: errors.New("primary down")}
	fallbackErr := errors.New("fallback down")
	fallback := &stubClient{err: fallbackErr}
	c := NewFallbackClient(primary, fallback, logging.New("error"))

	_, err := c.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, fallbackErr)
}
