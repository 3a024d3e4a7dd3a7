package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".py", "python"},
		{".go", "go"},
		{".rb", "ruby"},
		{".js", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ForExtension(tt.ext))
		})
	}
}

func TestNames(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"go", "python", "ruby"}, Names())
}

func TestLanguagesCompileQueries(t *testing.T) {
	t.Parallel()

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			l := Languages[name]
			require.NotNil(t, l.GetLanguage())
			require.NotNil(t, l.NewParser())

			q, err := l.GetTagQuery()
			require.NoError(t, err)
			require.NotNil(t, q)
		})
	}
}
