package collect

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/phobologic/llmexplain/internal/model"
)

func raw(id, src string) model.RawReference {
	return model.RawReference{Identifier: id, Source: func() string { return src }}
}

func TestCollectKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	target := model.TargetFunction{Name: "f", Source: "def f(): return g() + h()"}
	m := New(nil).Collect(target, []model.RawReference{
		raw("a.py:h", "def h(): return 2"),
		raw("a.py:g", "def g(): return 1"),
	})

	assert.Equal(t, "f", m.Name)
	assert.Equal(t, target.Source, m.Body)
	require.Len(t, m.References, 2)
	assert.Equal(t, "a.py:h", m.References[0].Identifier)
	assert.Equal(t, "a.py:g", m.References[1].Identifier)
}

func TestCollectDuplicateFirstWins(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	called := false
	refs := []model.RawReference{
		raw("a.py:g", "first"),
		{Identifier: "a.py:g", Source: func() string { called = true; return "second" }},
	}

	m := New(zap.New(core)).Collect(model.TargetFunction{Name: "f"}, refs)

	require.Len(t, m.References, 1)
	src, ok := m.Lookup("a.py:g")
	require.True(t, ok)
	assert.Equal(t, "first", src)
	assert.False(t, called, "dropped reference's source should not be read")

	entries := logs.FilterMessage("duplicate reference, keeping first").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "a.py:g", entries[0].ContextMap()["identifier"])
}

func TestCollectNilSource(t *testing.T) {
	t.Parallel()

	var c Collector
	m := c.Collect(model.TargetFunction{Name: "f"}, []model.RawReference{{Identifier: "x"}})
	require.Len(t, m.References, 1)
	assert.Equal(t, "", m.References[0].Source)
}

func TestCollectFirstSeenProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(rt, "n")
		refs := make([]model.RawReference, n)
		want := make(map[string]string)
		var order []string
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("f.py:%d", rapid.IntRange(0, 5).Draw(rt, "id"))
			src := fmt.Sprintf("src-%d", i)
			refs[i] = raw(id, src)
			if _, ok := want[id]; !ok {
				want[id] = src
				order = append(order, id)
			}
		}

		m := New(nil).Collect(model.TargetFunction{Name: "f"}, refs)

		if len(m.References) != len(order) {
			rt.Fatalf("got %d references, want %d", len(m.References), len(order))
		}
		for i, ref := range m.References {
			if ref.Identifier != order[i] {
				rt.Fatalf("reference %d = %q, want %q", i, ref.Identifier, order[i])
			}
			if ref.Source != want[ref.Identifier] {
				rt.Fatalf("source of %q = %q, want %q", ref.Identifier, ref.Source, want[ref.Identifier])
			}
		}
	})
}

func TestIdentifier(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "util.py:helper", Identifier("pkg/lib/util.py", "helper"))
	assert.Equal(t, "server.go:Server.Handle", Identifier("server.go", "Server.Handle"))
}
