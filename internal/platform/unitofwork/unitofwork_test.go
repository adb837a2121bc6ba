package unitofwork

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalTransactor_NestedCallsJoinScope(t *testing.T) {
	tx := NewLocalTransactor()
	calls := 0

	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		calls++
		return tx.WithinTx(ctx, func(context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestLocalTransactor_PropagatesError(t *testing.T) {
	tx := NewLocalTransactor()
	boom := errors.New("boom")

	err := tx.WithinTx(context.Background(), func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
}

func TestLocalTransactor_SerializesScopes(t *testing.T) {
	tx := NewLocalTransactor()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tx.WithinTx(context.Background(), func(context.Context) error {
				current := counter
				counter = current + 1
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestGormTransactor_RequiresDB(t *testing.T) {
	err := NewGormTransactor(nil).WithinTx(context.Background(), func(context.Context) error { return nil })
	require.Error(t, err)
}
