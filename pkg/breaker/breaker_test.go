package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestNew_TripsAfterConsecutiveFailures(t *testing.T) {
	cb := New("ninox", Settings{ConsecutiveFailures: 2, OpenTimeout: time.Minute})
	fail := func() (interface{}, error) { return nil, errors.New("down") }

	_, _ = cb.Execute(fail)
	assert.Equal(t, gobreaker.StateClosed, cb.State())

	_, _ = cb.Execute(fail)
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Execute(func() (interface{}, error) { return "ok", nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestNew_Defaults(t *testing.T) {
	cb := New("email", Settings{})
	assert.Equal(t, "email", cb.Name())
}
