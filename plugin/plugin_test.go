package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator 为每个目标输出一个常量
type fakeGenerator struct {
	*BaseGenerator
	suffix string
}

type fakeParams struct {
	Output string `param:"name=output,required=false,default=,description=输出文件"`
	Value  string `param:"name=value,required=false,default=v,description=常量值"`
}

func newFakeGenerator(name, annotation string) *fakeGenerator {
	return &fakeGenerator{
		BaseGenerator: NewBaseGeneratorWithParamsStruct(name, []string{annotation}, []TargetKind{TargetStruct}, fakeParams{}),
		suffix:        "_fake.go",
	}
}

func (g *fakeGenerator) OutputSuffix() string { return g.suffix }

func (g *fakeGenerator) Generate(ctx *GenerateContext) (*GenerateResult, error) {
	var paths []string
	sources := make(map[string]string)
	for _, target := range ctx.Targets {
		ann := GetAnnotation(target.Annotations, g.Annotations()[0])
		params := target.ParsedParams.(fakeParams)
		path := GetOutputPath(target.Target, ann, "$FILE"+g.suffix, ctx.GetPackageConfig(target.Target.FilePath), g.Name(), ctx.DefaultOutput)
		if _, ok := sources[path]; !ok {
			paths = append(paths, path)
			sources[path] = "package " + target.Target.PackageName + "\n"
		}
		sources[path] += fmt.Sprintf("\nconst %s%s = %q\n", target.Target.Name, g.Name(), params.Value)
	}

	result := NewGenerateResult()
	for _, path := range paths {
		result.AddRawOutput(path, []byte(sources[path]))
	}
	return result, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := newFakeGenerator("a", "A")
	b := newFakeGenerator("b", "B")
	b.SetPriority(10)

	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(b))

	assert.ErrorContains(t, r.Register(newFakeGenerator("a", "C")), "已注册")
	assert.ErrorContains(t, r.Register(newFakeGenerator("c", "A")), "@A")
	assert.Panics(t, func() { r.MustRegister(newFakeGenerator("b", "D")) })

	assert.Equal(t, []string{"A", "B"}, r.Annotations())
	gens := r.Generators()
	require.Len(t, gens, 2)
	assert.Equal(t, "b", gens[0].Name(), "优先级数字小的在前")

	gen, ok := r.GetByAnnotation("A")
	require.True(t, ok)
	assert.Equal(t, "a", gen.Name())
	assert.True(t, r.IsRegistered("B"))
	assert.False(t, r.IsRegistered("C"))
}

func TestDispatchTargets(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(newFakeGenerator("a", "A"))

	structTarget := &AnnotatedTarget{
		Target:      &Target{Kind: TargetStruct, Name: "S"},
		Annotations: ParseAnnotations("// @A @A(value=x) @Unknown"),
	}
	typeTarget := &AnnotatedTarget{
		Target:      &Target{Kind: TargetType, Name: "T"},
		Annotations: ParseAnnotations("// @A"),
	}

	dispatch := r.DispatchTargets(&ScanResult{Targets: []*AnnotatedTarget{structTarget, typeTarget}})
	assert.Equal(t, map[string][]*AnnotatedTarget{"a": {structTarget}}, dispatch)
}

func TestScanner(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "model.go"), `// go:buildgen: plugin:a -output `+"`all_a`"+`
package model

// @A(value=x)
type User struct {
	Name string
}

// Plain 没有注解
type Plain struct{}

type (
	// @A
	Number int

	// @A
	Pair struct{ X int }
)
`)
	writeFile(t, filepath.Join(dir, "model_fake.go"), "package model\n\n// @A\ntype Skipped struct{}\n")
	writeFile(t, filepath.Join(dir, "gen.go"), "// Code generated by x. DO NOT EDIT.\n\npackage model\n\n// @A\ntype Generated struct{}\n")
	writeFile(t, filepath.Join(dir, "sub", "sub.go"), "package sub\n\n// @A\ntype Nested struct{}\n")

	scanner := NewScanner(WithAnnotationFilter("A"), WithSkipSuffixes("_fake.go"), WithWorkers(2))

	t.Run("single dir", func(t *testing.T) {
		result, err := scanner.Scan(context.Background(), dir)
		require.NoError(t, err)

		var names []string
		for _, target := range result.All() {
			names = append(names, target.Target.Name+":"+target.Target.Kind.String())
		}
		assert.Equal(t, []string{"User:struct", "Number:type", "Pair:struct"}, names)

		cfg := result.PackageConfigs[dir]
		require.NotNil(t, cfg)
		assert.Equal(t, "all_a", cfg.GetPluginOutput("a"))
		assert.Empty(t, cfg.GetPluginOutput("b"))
	})

	t.Run("recursive", func(t *testing.T) {
		result, err := scanner.Scan(context.Background(), dir+"/...")
		require.NoError(t, err)
		assert.Len(t, result.ByAnnotation("A"), 4)
	})
}

func TestQuickMatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	writeFile(t, path, "package a\n\ntype A struct {\n\tEnv []string // @A(each=X)\n}\n")

	ok, err := NewScanner(WithAnnotationFilter("A")).QuickMatchFile(path)
	require.NoError(t, err)
	assert.True(t, ok, "行尾注释中的注解也会匹配")

	ok, err = NewScanner(WithAnnotationFilter("B")).QuickMatchFile(path)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseDirectiveLine(t *testing.T) {
	cfg := parseDirectiveLine("-output `$FILE_gen` plugin:Foo -output \"foo out\"", "/pkg")
	require.NotNil(t, cfg)
	assert.Equal(t, "$FILE_gen", cfg.DefaultOutput)
	assert.Equal(t, "foo out", cfg.PluginOutputs["foo"])
	assert.Equal(t, "$FILE_gen", cfg.GetPluginOutput("bar"))

	assert.Nil(t, parseDirectiveLine("plugin:foo", "/pkg"))
}

func TestGetOutputPath(t *testing.T) {
	target := &Target{Name: "User", PackageName: "model", FilePath: "/src/model/user.go"}
	noParams := &Annotation{Params: map[string]string{}}

	assert.Equal(t, "/src/model/user_builder.go", GetOutputPath(target, noParams, "$FILE_builder.go", nil, "a", ""))
	assert.Equal(t, "/src/model/cmd.go", GetOutputPath(target, noParams, "$FILE_builder.go", nil, "a", "cmd"))

	pkg := &PackageConfig{DefaultOutput: "$PACKAGE_all", PluginOutputs: map[string]string{"b": "only_b"}}
	assert.Equal(t, "/src/model/model_all.go", GetOutputPath(target, noParams, "", pkg, "a", "cmd"))
	assert.Equal(t, "/src/model/only_b.go", GetOutputPath(target, noParams, "", pkg, "B", ""))

	ann := &Annotation{Params: map[string]string{"output": "/abs/$FILE.gen.go"}}
	assert.Equal(t, "/abs/user.gen.go", GetOutputPath(target, ann, "", pkg, "a", ""))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "user.go"), "package model\n\n// @A(value=`hello`)\ntype User struct{ Name string }\n")
	writeFile(t, filepath.Join(dir, "order.go"), "package model\n\n// @A(output=`user_fake`)\ntype Order struct{ ID int }\n")

	r := NewRegistry()
	r.MustRegister(newFakeGenerator("a", "A"))
	opts := &RunOptions{Registry: r, Patterns: []string{dir}, Async: true}

	stats, err := RunWithOptionsAndStats(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TargetCount)
	assert.Equal(t, 1, stats.FileCount, "两个目标输出到同一个文件")

	data, err := os.ReadFile(filepath.Join(dir, "user_fake.go"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, GeneratedHeader)
	assert.Contains(t, content, `Usera = "hello"`)
	assert.Contains(t, content, `Ordera = "v"`)

	t.Run("check up to date", func(t *testing.T) {
		check := *opts
		check.Check = true
		stats, err := RunWithOptionsAndStats(context.Background(), &check)
		require.NoError(t, err)
		assert.Empty(t, stats.StaleFiles)
	})

	t.Run("check stale", func(t *testing.T) {
		writeFile(t, filepath.Join(dir, "user.go"), "package model\n\n// @A(value=`changed`)\ntype User struct{ Name string }\n")
		check := *opts
		check.Check = true
		stats, err := RunWithOptionsAndStats(context.Background(), &check)
		require.ErrorIs(t, err, ErrStale)
		assert.Equal(t, []string{filepath.Join(dir, "user_fake.go")}, stats.StaleFiles)

		after, err := os.ReadFile(filepath.Join(dir, "user_fake.go"))
		require.NoError(t, err)
		assert.Equal(t, content, string(after), "check 模式不写文件")
	})
}

func TestRunNoGenerators(t *testing.T) {
	err := Run(context.Background(), NewRegistry(), t.TempDir())
	assert.ErrorContains(t, err, "没有已注册的生成器")
}
