package treesitter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/llmexplain/internal/model"
	"github.com/phobologic/llmexplain/internal/source"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func identifiers(refs []model.RawReference) []string {
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.Identifier
	}
	return ids
}

const mainPy = `from util import g

def f():
    x = g()
    y = g()
    print(x)
    return h(y) + f()

def h(v):
    return v * 2
`

const utilPy = `def g():
    return 1

class Store:
    def save(self):
        return g()
`

func TestFunctionAndReferences(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"main.py":     mainPy,
		"lib/util.py": utilPy,
	})
	src, err := Open(context.Background(), root, Options{})
	require.NoError(t, err)
	assert.Len(t, src.Files(), 2)

	fn, err := src.Function(context.Background(), "f")
	require.NoError(t, err)
	assert.Equal(t, "f", fn.Name)
	assert.Contains(t, fn.Source, "def f():")
	assert.Contains(t, fn.Source, "return h(y) + f()")
	assert.NotContains(t, fn.Source, "def h(v)")

	refs, err := src.References(context.Background(), "f")
	require.NoError(t, err)

	// One reference per call site; print is unresolved and f() is recursion.
	assert.Equal(t, []string{"util.py:g", "util.py:g", "main.py:h"}, identifiers(refs))
	assert.Equal(t, "def g():\n    return 1", refs[0].Source())
	assert.Equal(t, "def h(v):\n    return v * 2", refs[2].Source())
}

func TestMethodLookup(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"util.py": utilPy})
	src, err := Open(context.Background(), root, Options{})
	require.NoError(t, err)

	for _, name := range []string{"Store.save", "save"} {
		fn, err := src.Function(context.Background(), name)
		require.NoError(t, err, name)
		assert.Equal(t, "Store.save", fn.Name)
	}

	refs, err := src.References(context.Background(), "Store.save")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "util.py:g", refs[0].Identifier)
}

func TestGoReceiverMethods(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"server.go": `package main

type Server struct{}

func (s *Server) Handle() string {
	return s.render() + helper()
}

func (s *Server) render() string { return "ok" }

func helper() string { return "!" }
`,
	})
	src, err := Open(context.Background(), root, Options{})
	require.NoError(t, err)

	refs, err := src.References(context.Background(), "Server.Handle")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "server.go:Server.render", refs[0].Identifier)
	assert.Equal(t, "server.go:helper", refs[1].Identifier)
	assert.Equal(t, `func helper() string { return "!" }`, refs[1].Source())
}

func TestGoGenericCalls(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"srv.go": `package main

type Box[T any] struct{ v T }

func (b Box[T]) Get() T { return b.v }

func gen[T any](v T) T { return v }

func free() int {
	return Box[int]{}.Get() + gen[int](1)
}
`,
	})
	src, err := Open(context.Background(), root, Options{})
	require.NoError(t, err)

	refs, err := src.References(context.Background(), "free")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"srv.go:Box.Get", "srv.go:gen"}, identifiers(refs))
}

func TestRubyBareCalls(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"a.rb": `class Foo
  def bar
    baz
    baz()
    qux(1)
    self.quux
  end

  def baz; end

  def qux(n)
    n
  end

  def quux; end
end
`,
	})
	src, err := Open(context.Background(), root, Options{})
	require.NoError(t, err)

	refs, err := src.References(context.Background(), "Foo.bar")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.rb:Foo.baz", "a.rb:Foo.baz", "a.rb:Foo.qux", "a.rb:Foo.quux"}, identifiers(refs))

	refs, err = src.References(context.Background(), "Foo.qux")
	require.NoError(t, err)
	assert.Empty(t, refs, "locals do not resolve")
}

func TestSkipTests(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"a.py":            "def run():\n    return 1\n",
		"tests/test_a.py": "def run():\n    return 2\n",
	})

	src, err := Open(context.Background(), root, Options{})
	require.NoError(t, err)
	_, err = src.Function(context.Background(), "run")
	require.ErrorIs(t, err, source.ErrAmbiguousFunction)

	src, err = Open(context.Background(), root, Options{SkipTests: true})
	require.NoError(t, err)
	assert.Len(t, src.Files(), 1)
	fn, err := src.Function(context.Background(), "run")
	require.NoError(t, err)
	assert.Equal(t, "def run():\n    return 1", fn.Source)
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"util.py": utilPy})
	src, err := Open(context.Background(), root, Options{})
	require.NoError(t, err)

	_, err = src.Function(context.Background(), "missing")
	assert.ErrorIs(t, err, source.ErrFunctionNotFound)
	_, err = src.References(context.Background(), "Store")
	assert.ErrorIs(t, err, source.ErrFunctionNotFound, "classes are not functions")
}

func TestAmbiguousAndFileRestriction(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"a.py": "def run():\n    return 1\n",
		"b.py": "def run():\n    return 2\n",
	})

	src, err := Open(context.Background(), root, Options{})
	require.NoError(t, err)
	_, err = src.Function(context.Background(), "run")
	require.ErrorIs(t, err, source.ErrAmbiguousFunction)
	assert.Contains(t, err.Error(), "a.py:1")
	assert.Contains(t, err.Error(), "b.py:1")

	src, err = Open(context.Background(), root, Options{File: "b.py"})
	require.NoError(t, err)
	fn, err := src.Function(context.Background(), "run")
	require.NoError(t, err)
	assert.Equal(t, "def run():\n    return 2", fn.Source)

	src, err = Open(context.Background(), root, Options{File: filepath.Join(root, "a.py")})
	require.NoError(t, err)
	fn, err = src.Function(context.Background(), "run")
	require.NoError(t, err)
	assert.Equal(t, "def run():\n    return 1", fn.Source)
}

func TestOpenErrors(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{})
	assert.Error(t, err)

	empty := writeTree(t, map[string]string{"README.md": "# hi\n"})
	_, err = Open(context.Background(), empty, Options{})
	assert.ErrorContains(t, err, "no parseable files")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	root := writeTree(t, map[string]string{"a.py": "def f():\n    pass\n"})
	_, err = Open(ctx, root, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
