package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DisabledIsNil(t *testing.T) {
	l := New("off", 0)
	assert.Nil(t, l)
	require.NoError(t, l.Wait(context.Background()))
	assert.True(t, l.Allow())
	assert.Empty(t, l.Name())
}

func TestLimiter_Burst(t *testing.T) {
	l := NewWithBurst("wikipedia", 1, 2)
	assert.Equal(t, "wikipedia", l.Name())
	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	l := NewWithBurst("slow", 0.001, 1)
	require.True(t, l.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait for slow")
}
