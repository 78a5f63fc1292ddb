package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedStub struct{ name string }

func (n *namedStub) Name() string { return n.name }

func TestRegistry_ExtendReplacesBucket(t *testing.T) {
	r := New[*namedStub]()
	a := &namedStub{name: "a"}
	b := &namedStub{name: "b"}

	r.Extend([]*namedStub{a}, "mod1", "repoA")
	assert.Equal(t, 1, r.Len())

	r.Extend([]*namedStub{b}, "mod1", "repoA")
	assert.Equal(t, 1, r.Len(), "Extend must replace the bucket, not merge it")

	got, ok := r.GetByName("b", "")
	require.True(t, ok)
	assert.Same(t, b, got)

	_, ok = r.GetByName("a", "")
	assert.False(t, ok)
}

func TestRegistry_GetByRepo_FlattensModules(t *testing.T) {
	r := New[*namedStub]()
	r.Extend([]*namedStub{{name: "a"}}, "mod1", "repoA")
	r.Extend([]*namedStub{{name: "b"}}, "mod2", "repoA")
	r.Extend([]*namedStub{{name: "c"}}, "mod1", "repoB")

	got := r.GetByRepo("repoA")
	assert.Len(t, got, 2)
}

func TestRegistry_GetAll_InsertionOrder(t *testing.T) {
	r := New[*namedStub]()
	r.Extend([]*namedStub{{name: "a"}, {name: "b"}}, "mod1", "repoA")
	r.Extend([]*namedStub{{name: "c"}}, "mod2", "repoA")

	got := r.GetAll()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].Name(), got[1].Name(), got[2].Name()})
}

func TestRegistry_Remove_FirstMatchOnly(t *testing.T) {
	r := New[*namedStub]()
	x := &namedStub{name: "dup"}
	r.Extend([]*namedStub{x, x}, "mod1", "repoA")
	require.Equal(t, 2, r.Len())

	ok := r.Remove(x, "repoA")
	assert.True(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Clear(t *testing.T) {
	r := New[*namedStub]()
	r.Extend([]*namedStub{{name: "a"}}, "mod1", "repoA")
	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.GetAll())
}
