package auth

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStrategy struct {
	calls atomic.Int64
}

func (s *countingStrategy) Authenticate(_ context.Context, endpoint, username, _ string) (*Credentials, error) {
	s.calls.Add(1)
	return &Credentials{
		Token:      "tok-" + username,
		StorageURL: endpoint + "v1/AUTH_" + username,
	}, nil
}

func TestCachingStrategy_ReusesToken(t *testing.T) {
	inner := &countingStrategy{}
	caching := NewCachingStrategy(inner, time.Minute)
	ctx := context.Background()

	first, err := caching.Authenticate(ctx, "http://a/", "test:tester", "pw")
	require.NoError(t, err)
	second, err := caching.Authenticate(ctx, "http://a/", "test:tester", "pw")
	require.NoError(t, err)

	assert.Equal(t, first.Token, second.Token)
	assert.Equal(t, int64(1), inner.calls.Load())
}

func TestCachingStrategy_SeparatesUsers(t *testing.T) {
	inner := &countingStrategy{}
	caching := NewCachingStrategy(inner, time.Minute)
	ctx := context.Background()

	_, err := caching.Authenticate(ctx, "http://a/", "test:tester", "pw")
	require.NoError(t, err)
	_, err = caching.Authenticate(ctx, "http://a/", "test:tester2", "pw")
	require.NoError(t, err)

	assert.Equal(t, int64(2), inner.calls.Load())
}

func TestCachingStrategy_Invalidate(t *testing.T) {
	inner := &countingStrategy{}
	caching := NewCachingStrategy(inner, time.Minute)
	ctx := context.Background()

	_, err := caching.Authenticate(ctx, "http://a/", "test:tester", "pw")
	require.NoError(t, err)

	caching.Invalidate("http://a/", "test:tester")

	_, err = caching.Authenticate(ctx, "http://a/", "test:tester", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(2), inner.calls.Load())
}
