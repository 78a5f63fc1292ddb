package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanitycheck/engine/internal/apperror"
)

func TestCheckStatus_InitialCode(t *testing.T) {
	s := NewCheckStatus()
	assert.Equal(t, NotRan, s.Code())
	assert.Equal(t, "not_ran", s.String())
	assert.Equal(t, 0, s.Len())
}

func TestCheckStatus_SetCode_Invalid(t *testing.T) {
	s := NewCheckStatus()
	err := s.SetCode(CheckCode(99))
	require.Error(t, err)
	var invalid *apperror.ImplementationError
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, NotRan, s.Code(), "invalid SetCode must not mutate the code")
}

func TestCheckStatus_AddMessage_NeverShrinks(t *testing.T) {
	s := NewCheckStatus()
	s.AddMessage("first")
	s.AddMessage("second")
	require.Equal(t, 2, s.Len())
	assert.Equal(t, "first\nsecond", s.Message())

	require.NoError(t, s.SetCode(Failed))
	assert.Equal(t, 2, s.Len(), "SetCode must not touch the message log")
}

func TestCheckStatus_Equal_CodeOnly(t *testing.T) {
	a := NewCheckStatus()
	b := NewCheckStatus()
	b.AddMessage("unrelated")
	assert.True(t, a.Equal(b))

	require.NoError(t, b.SetCode(Passed))
	assert.False(t, a.Equal(b))
}

func TestCheckStatus_Subscribe_FiresOnEveryMutation(t *testing.T) {
	s := NewCheckStatus()
	var fired int
	s.Subscribe(func() { fired++ })

	require.NoError(t, s.SetCode(Running))
	s.AddMessage("hello")

	assert.Equal(t, 2, fired)
}

func TestCheckStatus_Subscribe_PanicDoesNotBlockMutator(t *testing.T) {
	s := NewCheckStatus()
	s.Subscribe(func() { panic("boom") })

	assert.NotPanics(t, func() {
		require.NoError(t, s.SetCode(Passed))
	})
	assert.Equal(t, Passed, s.Code())
}

func TestContextStatus_InitialCode(t *testing.T) {
	s := NewContextStatus()
	assert.Equal(t, NotReady, s.Code())
	assert.Equal(t, "not_ready", s.String())
}

func TestContextStatus_SetCode_Invalid(t *testing.T) {
	s := NewContextStatus()
	err := s.SetCode(ContextCode(42))
	require.Error(t, err)
	var invalid *apperror.ImplementationError
	assert.ErrorAs(t, err, &invalid)
}

func TestContextStatus_AllCodesRoundtripThroughString(t *testing.T) {
	for code, name := range contextCodeNames {
		s := NewContextStatus()
		require.NoError(t, s.SetCode(code))
		assert.Equal(t, name, s.String())
	}
}
