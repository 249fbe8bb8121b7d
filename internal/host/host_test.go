package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Lookup(1)
	require.False(t, ok)

	r.Register(1, func(ctx context.Context, args []uint64) ([]uint64, error) {
		return []uint64{args[0] + 1}, nil
	})
	fn, ok := r.Lookup(1)
	require.True(t, ok)
	out, err := fn(context.Background(), []uint64{41})
	require.NoError(t, err)
	require.Equal(t, []uint64{42}, out)
}
