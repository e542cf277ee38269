package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messySource = "package demo\nfunc  Hello( )   string {return \"hi\"}\n"

func TestWriteFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.go")

	require.NoError(t, WriteFormat(path, []byte(messySource)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package demo\n\nfunc Hello() string { return \"hi\" }\n", string(data))
}

func TestWriteFormat_InvalidSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.go")

	err := WriteFormat(path, []byte("package demo\nfunc {"))
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "格式化失败时不应写入文件")
}

func TestDiff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.go")

	t.Run("文件不存在", func(t *testing.T) {
		d, err := Diff(path, []byte(messySource))
		require.NoError(t, err)
		assert.Contains(t, d, "+func Hello() string")
	})

	t.Run("内容一致", func(t *testing.T) {
		require.NoError(t, WriteFormat(path, []byte(messySource)))
		d, err := Diff(path, []byte(messySource))
		require.NoError(t, err)
		assert.Empty(t, d)
	})

	t.Run("内容过期", func(t *testing.T) {
		d, err := Diff(path, []byte("package demo\nfunc Hello() string { return \"bye\" }\n"))
		require.NoError(t, err)
		assert.Contains(t, d, "-func Hello() string { return \"hi\" }")
		assert.Contains(t, d, "+func Hello() string { return \"bye\" }")
		assert.Contains(t, d, "(generated)")
	})
}
