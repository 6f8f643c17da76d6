package hotreload

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := &Error{
		Phase:  PhaseRead,
		Kind:   KindIO,
		Path:   "game.unit",
		Detail: "read unit image",
		Cause:  errors.New("permission denied"),
	}
	assert.Equal(t, "[read] io at game.unit: read unit image (caused by: permission denied)", err.Error())

	assert.Equal(t, "not_loaded: no active unit", (&Error{Kind: KindNotLoaded, Detail: "no active unit"}).Error())
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &Error{Phase: PhaseScan, Kind: KindMalformed})

	assert.ErrorIs(t, err, ErrMalformed)
	assert.ErrorIs(t, err, &Error{Phase: PhaseScan, Kind: KindMalformed})
	assert.NotErrorIs(t, err, &Error{Phase: PhaseLoad, Kind: KindMalformed})
	assert.NotErrorIs(t, err, ErrIO)
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(&Error{Kind: KindLeaked}))
	assert.True(t, IsFatal(&Error{Kind: KindPoisoned}))
	assert.True(t, IsFatal(errors.Join(ErrMalformed, &Error{Kind: KindLeaked})))
	assert.False(t, IsFatal(&Error{Kind: KindMalformed}))
	assert.False(t, IsFatal(errors.New("other")))
	assert.False(t, IsFatal(nil))
}

func TestMalformedKeepsStructuredCause(t *testing.T) {
	inner := &Error{Phase: PhaseScan, Kind: KindDuplicateID, Detail: "dup"}
	err := malformed("a.unit", "scan components", inner)
	assert.Equal(t, KindDuplicateID, err.Kind)
	assert.Equal(t, "a.unit", err.Path)
	assert.Empty(t, inner.Path)

	plain := malformed("a.unit", "scan components", errors.New("trap"))
	assert.Equal(t, KindMalformed, plain.Kind)
	assert.Equal(t, PhaseScan, plain.Phase)
}
