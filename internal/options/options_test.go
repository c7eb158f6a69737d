package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type limits struct {
	maxFields int
	strict    bool
	trail     []string
}

var errTooLarge = errors.New("too large")

func withMaxFields(n int) Option[*limits] {
	return New(func(l *limits) error {
		if n > 255 {
			return errTooLarge
		}
		l.maxFields = n
		l.trail = append(l.trail, "maxFields")

		return nil
	})
}

func withStrict() Option[*limits] {
	return NoError(func(l *limits) {
		l.strict = true
		l.trail = append(l.trail, "strict")
	})
}

func TestApply_InOrder(t *testing.T) {
	l := &limits{}

	err := Apply(l, withStrict(), withMaxFields(8))
	require.NoError(t, err)
	require.True(t, l.strict)
	require.Equal(t, 8, l.maxFields)
	require.Equal(t, []string{"strict", "maxFields"}, l.trail)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	l := &limits{}

	err := Apply(l, withMaxFields(4), withMaxFields(1000), withStrict())
	require.ErrorIs(t, err, errTooLarge)
	require.Equal(t, 4, l.maxFields)
	require.False(t, l.strict)
}

func TestApply_Empty(t *testing.T) {
	l := &limits{}

	require.NoError(t, Apply(l))
	require.NoError(t, Apply[*limits](l, nil))
	require.Zero(t, l.maxFields)
}
