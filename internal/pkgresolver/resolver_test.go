package pkgresolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoot(t *testing.T) string {
	wd, err := os.Getwd()
	require.NoError(t, err)
	root, err := FindModuleRoot(wd)
	require.NoError(t, err)
	return root
}

func TestIsStdLib(t *testing.T) {
	tests := map[string]bool{
		"fmt":                  true,
		"net/http":             true,
		"encoding/json":        true,
		"github.com/samber/lo": false,
		"gorm.io/datatypes":    false,
		"":                     false,
	}
	for p, want := range tests {
		assert.Equal(t, want, IsStdLib(p), p)
	}
}

func TestGuessName(t *testing.T) {
	tests := map[string]string{
		"fmt":                           "fmt",
		"net/http":                      "http",
		"github.com/samber/mo":          "mo",
		"gopkg.in/yaml.v3":              "yaml",
		"github.com/go-playground/v10":  "playground",
		"github.com/jackc/pgx/v5":       "pgx",
		"github.com/mattn/go-runewidth": "runewidth",
	}
	for p, want := range tests {
		assert.Equal(t, want, GuessName(p), p)
	}
}

func TestResolver_StdLib(t *testing.T) {
	r := New(testRoot(t))

	assert.Equal(t, "fmt", r.PackageName("fmt"))
	assert.Equal(t, "http", r.PackageName("net/http"))
	assert.Equal(t, "json", r.PackageName("encoding/json"))
	assert.Equal(t, "", r.PackageName(""))
}

func TestResolver_ProjectInternal(t *testing.T) {
	root := testRoot(t)
	module, err := ModulePath(root)
	require.NoError(t, err)
	r := New(root)

	base := module + "/internal/pkgresolver/testdata/"
	assert.Equal(t, "plain", r.PackageName(base+"plain"))
	// package 声明与目录名不一致时以声明为准
	assert.Equal(t, "other", r.PackageName(base+"renamed"))
}

func TestDeclaresFunc(t *testing.T) {
	root := testRoot(t)
	module, err := ModulePath(root)
	require.NoError(t, err)
	r := New(root)

	dir, err := r.Dir(module + "/internal/pkgresolver/testdata/plain")
	require.NoError(t, err)

	found, err := DeclaresFunc(dir, "New")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = DeclaresFunc(dir, "Some")
	require.NoError(t, err)
	assert.False(t, found, "方法不算顶层函数")

	_, err = DeclaresFunc(filepath.Join(dir, "missing"), "New")
	assert.Error(t, err)
}

func TestResolver_Fallback(t *testing.T) {
	r := New("")

	assert.Equal(t, "missing", r.PackageName("example.invalid/none/missing"))
	assert.Equal(t, "thing", r.PackageName("example.invalid/thing/v2"))
}

func TestResolver_Cache(t *testing.T) {
	root := testRoot(t)
	module, err := ModulePath(root)
	require.NoError(t, err)
	r := New(root)

	p := module + "/internal/pkgresolver/testdata/renamed"
	assert.Equal(t, "other", r.PackageName(p))

	r.mu.RLock()
	cached := r.names[p]
	r.mu.RUnlock()
	assert.Equal(t, "other", cached)
}

func TestFindModuleRoot(t *testing.T) {
	root := testRoot(t)
	_, err := os.Stat(filepath.Join(root, "go.mod"))
	assert.NoError(t, err)

	_, err = FindModuleRoot(filepath.Join(root, "internal", "pkgresolver", "testdata", "plain"))
	assert.NoError(t, err)
}
