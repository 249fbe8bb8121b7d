package trap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAsTrapRecoversPanic(t *testing.T) {
	recovered := func() (out interface{}) {
		defer func() { out = recover() }()
		panic(ErrIntegerDivisionByZero)
	}()
	tr, ok := AsTrap(recovered)
	require.True(t, ok)
	require.Equal(t, IntegerDivisionByZero, tr.Kind)
}

func TestAsTrapRejectsOtherPanics(t *testing.T) {
	_, ok := AsTrap(fmt.Errorf("boom"))
	require.False(t, ok)
}

func TestHostFailureCarriesCode(t *testing.T) {
	e := NewHostFailure(42)
	require.Equal(t, HostFailure, e.Kind)
	require.Equal(t, uint32(42), e.HostCode)
}
