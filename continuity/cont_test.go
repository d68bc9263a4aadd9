package continuity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChain(t *testing.T) {
	t.Run("all steps succeed", func(t *testing.T) {
		err := New().
			Step(func() error { return nil }).
			Step(func() error { return nil }).
			Step(func() error { return nil }).
			Err()
		require.NoError(t, err)
	})

	t.Run("stops at first failure", func(t *testing.T) {
		var ran [4]bool
		err := New().
			Step(func() error { ran[0] = true; return nil }).
			Step(func() error { ran[1] = true; return nil }).
			Step(func() error { ran[2] = true; return errors.New("step 2 failed") }).
			Step(func() error { ran[3] = true; return nil }).
			Err()

		require.Error(t, err)
		require.Equal(t, "step 2 failed", err.Error())
		require.True(t, ran[0])
		require.True(t, ran[1])
		require.True(t, ran[2])
		require.False(t, ran[3])
	})

	t.Run("first failure wins over later ones", func(t *testing.T) {
		err := New().
			Step(func() error { return errors.New("first") }).
			Step(func() error { return errors.New("second") }).
			Err()
		require.EqualError(t, err, "first")
	})
}
