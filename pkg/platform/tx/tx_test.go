package tx

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSerializesMutations(t *testing.T) {
	s := NewSerializer()
	ctx := context.Background()

	counter := 0
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Write(ctx, func(context.Context) error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestWritePropagatesError(t *testing.T) {
	s := NewSerializer()
	sentinel := errors.New("precondition failed")

	err := s.Write(context.Background(), func(context.Context) error {
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
}

func TestWriteRejectsCancelledContext(t *testing.T) {
	s := NewSerializer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Write(ctx, func(context.Context) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called, "body must not run once the context is cancelled")
}

func TestReadSeesCommittedWrites(t *testing.T) {
	s := NewSerializer()
	ctx := context.Background()

	value := 0
	require.NoError(t, s.Write(ctx, func(context.Context) error {
		value = 42
		return nil
	}))

	var observed int
	require.NoError(t, s.Read(ctx, func(context.Context) error {
		observed = value
		return nil
	}))
	assert.Equal(t, 42, observed)
}
