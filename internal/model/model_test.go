package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreparedMethodAdd(t *testing.T) {
	t.Parallel()

	m := NewPreparedMethod(TargetFunction{Name: "f", Source: "body"})
	assert.True(t, m.Add(Reference{Identifier: "a", Source: "1"}))
	assert.False(t, m.Add(Reference{Identifier: "a", Source: "2"}))
	assert.True(t, m.Add(Reference{Identifier: "b", Source: "3"}))

	src, ok := m.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, "1", src)
	assert.True(t, m.Has("b"))
	assert.False(t, m.Has("c"))
	assert.Len(t, m.References, 2)
}

func TestPreparedMethodLiteral(t *testing.T) {
	t.Parallel()

	m := &PreparedMethod{
		Name:       "f",
		References: []Reference{{Identifier: "a", Source: "1"}},
	}
	src, ok := m.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, "1", src)

	assert.False(t, m.Add(Reference{Identifier: "a", Source: "2"}))
	assert.True(t, m.Add(Reference{Identifier: "b", Source: "2"}))
	assert.Len(t, m.References, 2)
}
