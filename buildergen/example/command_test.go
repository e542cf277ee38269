package example

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/donutnomad/buildgen/builder"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandBuild(t *testing.T) {
	cmd, err := NewCommandBuilder().
		Executable("ls").
		AddEnv("PATH").
		AddEnv("PATH").
		Build()
	require.NoError(t, err)
	assert.Equal(t, &Command{
		Executable: "ls",
		Args:       mo.None[string](),
		Env:        []string{"PATH", "PATH"},
	}, cmd)
}

func TestCommandMissingExecutable(t *testing.T) {
	cmd, err := NewCommandBuilder().Args("-l").AddEnv("HOME").Build()
	assert.Nil(t, cmd)
	require.ErrorIs(t, err, builder.ErrMissingField)

	var missing *builder.MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Executable", missing.Field)
	assert.Equal(t, "Executable", missing.Method)
	assert.Equal(t, "Executable not set; use method Executable to set the Executable's value.", err.Error())
}

func TestOptionalLastWriteWins(t *testing.T) {
	cmd, err := NewCommandBuilder().Executable("ls").Args("-a").Args("-l").Build()
	require.NoError(t, err)
	assert.Equal(t, mo.Some("-l"), cmd.Args)
}

func TestAccumulatingEmptyNotNil(t *testing.T) {
	cmd, err := NewCommandBuilder().Executable("true").Build()
	require.NoError(t, err)
	assert.NotNil(t, cmd.Env)
	assert.Empty(t, cmd.Env)
}

func TestAccumulatingOrder(t *testing.T) {
	b := NewCommandBuilder().Executable("env")
	want := []string{"A=1", "B=2", "C=3", "A=4"}
	for _, v := range want {
		b.AddEnv(v)
	}
	cmd, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, want, cmd.Env)
}

func TestBuildTwice(t *testing.T) {
	b := NewCommandBuilder().Executable("ls").Args("-l").AddEnv("PATH")

	first, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "ls", first.Executable)
	assert.Equal(t, mo.Some("-l"), first.Args)

	// 必填与可选字段已被取走，累加字段保留
	_, err = b.Build()
	var missing *builder.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Executable", missing.Field)

	second, err := b.Executable("ls").Build()
	require.NoError(t, err)
	assert.True(t, second.Args.IsAbsent(), "Args 在第一次 Build 时被清空")
	assert.Equal(t, []string{"PATH"}, second.Env)
}

func TestSnapshotIsolation(t *testing.T) {
	b := NewCommandBuilder().Executable("ls").AddEnv("A")
	first, err := b.Build()
	require.NoError(t, err)

	first.Env[0] = "changed"
	b.AddEnv("B")
	second, err := b.Executable("ls").Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, second.Env, "Build 返回的切片与 Builder 不共享底层数组")
	assert.Equal(t, []string{"changed"}, first.Env)
}

func TestPipelineEachNamedLikeField(t *testing.T) {
	b := NewPipelineBuilder().Name("ci").stages("lint").stages("test")
	p, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "ci", p.Name)
	assert.Equal(t, []string{"lint", "test"}, p.stages)

	p, err = b.Name("cd").stages("deploy").Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"lint", "test", "deploy"}, p.stages)
}

func TestPointOrderIndependent(t *testing.T) {
	setters := []func(*PointBuilder){
		func(b *PointBuilder) { b.X(1) },
		func(b *PointBuilder) { b.Y(2) },
		func(b *PointBuilder) { b.Z(3) },
	}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		b := NewPointBuilder()
		for _, j := range r.Perm(len(setters)) {
			setters[j](b)
		}
		p, err := b.Build()
		require.NoError(t, err)
		assert.Equal(t, &Point{X: 1, Y: 2, Z: 3}, p)
	}
}

func TestPointFirstMissingField(t *testing.T) {
	tests := []struct {
		name    string
		build   func() (*Point, error)
		missing string
	}{
		{name: "none set", build: NewPointBuilder().Build, missing: "X"},
		{name: "x set", build: NewPointBuilder().X(1).Build, missing: "Y"},
		{name: "z set", build: NewPointBuilder().Z(1).Build, missing: "X"},
		{name: "x z set", build: NewPointBuilder().X(1).Z(3).Build, missing: "Y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			var missing *builder.MissingFieldError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.missing, missing.Field)
		})
	}
}

func TestRequestCustomNames(t *testing.T) {
	req, err := NewRequest().
		URL("https://example.com").
		Headers(map[string]string{"Accept": "*/*"}).
		Retry(time.Second).
		Retry(2 * time.Second).
		Finish()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", req.URL)
	assert.True(t, req.Timeout.IsAbsent())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, req.Backoff)

	_, err = NewRequest().URL("x").Finish()
	assert.EqualError(t, err, "Headers not set; use method Headers to set the Headers's value.")
}
