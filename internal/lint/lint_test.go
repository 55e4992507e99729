// If you are AI: This file contains unit tests for the source convention checks.

package lint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodSource = `// If you are AI: This file is fine.

package demo

// Hello says hello.
func Hello() string { return "hello" }

func init() {}
`

const badSource = `package demo

func Undocumented() {}

// Documented has a comment.
func Documented() {}
`

func TestCheckSourceClean(t *testing.T) {
	assert.Empty(t, CheckSource("good.go", []byte(goodSource), Options{MaxLines: 100, RequireDocs: true}))
}

func TestCheckSourceViolations(t *testing.T) {
	got := CheckSource("bad.go", []byte(badSource), Options{MaxLines: 3, RequireDocs: true})
	require.Len(t, got, 3)
	assert.Equal(t, `bad.go: missing "If you are AI:" header`, got[0].String())
	assert.Equal(t, "bad.go: 6 lines (max 3)", got[1].String())
	assert.Equal(t, "bad.go:3: function Undocumented missing comment", got[2].String())
}

func TestCheckSourceDocsOptional(t *testing.T) {
	got := CheckSource("bad.go", []byte(badSource), Options{})
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "header")
}

func TestCheckSourceUnparseable(t *testing.T) {
	got := CheckSource("broken.go", []byte("// If you are AI: broken\n\npackage {"), Options{RequireDocs: true})
	assert.Empty(t, got)
}

func TestCheckTree(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("a/good.go", goodSource)
	write("a/bad.go", badSource)
	write("a/bad_test.go", badSource)
	write("_skip/bad.go", badSource)
	write("vendor/x/bad.go", badSource)
	write("a/notes.txt", "not go")

	got, err := CheckTree(root, Options{RequireDocs: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, v := range got {
		assert.True(t, strings.HasSuffix(v.Path, filepath.Join("a", "bad.go")), v.Path)
	}

	got, err = CheckTree(root, Options{RequireDocs: true, IncludeTests: true})
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestCheckTreeMissingRoot(t *testing.T) {
	_, err := CheckTree(filepath.Join(t.TempDir(), "nope"), Options{})
	assert.Error(t, err)
}
