package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName_EnforcesLimit(t *testing.T) {
	assert.NoError(t, Name(strings.Repeat("a", NameCharLimit)))
	assert.Error(t, Name(strings.Repeat("a", NameCharLimit+1)))
}

func TestDescription_EnforcesLimit(t *testing.T) {
	assert.NoError(t, Description(strings.Repeat("a", DescriptionCharLimit)))
	assert.Error(t, Description(strings.Repeat("a", DescriptionCharLimit+1)))
}

func TestPriority_EnforcesRange(t *testing.T) {
	assert.NoError(t, Priority(0))
	assert.NoError(t, Priority(100))
	assert.Error(t, Priority(-1))
	assert.Error(t, Priority(101))
}
