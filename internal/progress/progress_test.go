package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounting_ResetAndAdd(t *testing.T) {
	c := NewCounting()
	c.Reset(3)
	assert.Equal(t, 3, c.Maximum)
	assert.Equal(t, 0, c.Current)

	c.Add()
	c.Add()
	assert.Equal(t, 2, c.Current)
}

func TestCounting_OnAddCallback(t *testing.T) {
	c := NewCounting()
	c.Reset(2)
	var seen [][2]int
	c.OnAdd = func(current, maximum int) { seen = append(seen, [2]int{current, maximum}) }

	c.Add()
	c.Add()

	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, seen)
}

func TestNoop_SatisfiesSink(t *testing.T) {
	var s Sink = Noop{}
	s.Reset(5)
	s.Add()
	assert.Nil(t, s.Widget())
}
