package builder

import (
	"errors"
	"fmt"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFieldError(t *testing.T) {
	err := MissingField("executable", "executable")
	assert.Equal(t, "executable not set; use method executable to set the executable's value.", err.Error())

	var mfe *MissingFieldError
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t, "executable", mfe.Field)
	assert.Equal(t, "executable", mfe.Method)

	assert.True(t, errors.Is(err, ErrMissingField))
	assert.True(t, errors.Is(fmt.Errorf("wrap: %w", err), ErrMissingField))
	assert.False(t, errors.Is(errors.New("other"), ErrMissingField))
}

func TestTake(t *testing.T) {
	slot := mo.Some("ls")

	v, ok := Take(&slot).Get()
	require.True(t, ok)
	assert.Equal(t, "ls", v)
	assert.True(t, slot.IsAbsent(), "Take 之后应被清空")

	_, ok = Take(&slot).Get()
	assert.False(t, ok)
}

func TestTake_Plain(t *testing.T) {
	n := 42
	assert.Equal(t, 42, Take(&n))
	assert.Equal(t, 0, n)
}

func TestSnapshot(t *testing.T) {
	src := []string{"PATH", "HOME"}
	dst := Snapshot(src)
	assert.Equal(t, src, dst)

	dst[0] = "changed"
	assert.Equal(t, "PATH", src[0], "副本不应与原切片共享底层数组")

	empty := Snapshot[string](nil)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
