package buildergen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/donutnomad/buildgen/internal/structparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver map[string]string

func (r fakeResolver) PackageName(importPath string) string {
	return r[importPath]
}

const frontendSource = `package example

import (
	"context"
	"time"

	opt "github.com/samber/mo"
	"gopkg.in/yaml.v3"
)

type Command struct {
	Executable string
	Args       opt.Option[string]
	// @Builder(each = "AddEnv")
	Env     []string
	Labels  map[string]*yaml.Node // @Builder(each="AddLabel")
	Timeout *time.Duration
	Run     func(context.Context) error
	Buf     [8]byte
	Pair    Pair[int, string]
}

type Number int

type Empty struct{}

type Wrapper struct {
	*Command
	Name string
}

type Generic[T any] struct {
	V T
}
`

func describe(t *testing.T, name string) (RecordDescription, error) {
	t.Helper()
	ctx := structparse.NewParseContextWithResolver(fakeResolver{
		"context":              "context",
		"time":                 "time",
		"github.com/samber/mo": "mo",
		"gopkg.in/yaml.v3":     "yaml",
	})
	info, err := ctx.ParseSource("example.go", frontendSource, name)
	require.NoError(t, err)
	return Describe(info)
}

func TestDescribe(t *testing.T) {
	rec, err := describe(t, "Command")
	require.NoError(t, err)
	assert.Equal(t, "Command", rec.Name)
	assert.Equal(t, "example", rec.Package)
	assert.Equal(t, ShapeStruct, rec.Shape)

	types := map[string]TypeExpr{}
	var names []string
	for _, f := range rec.Fields {
		types[f.Name] = f.Type
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Executable", "Args", "Env", "Labels", "Timeout", "Run", "Buf", "Pair"}, names)

	assert.Equal(t, NamedType{Name: "string"}, types["Executable"])
	assert.Equal(t, NamedType{PkgPath: "github.com/samber/mo", Pkg: "opt", Alias: true, Name: "Option", Args: []TypeExpr{NamedType{Name: "string"}}}, types["Args"])
	assert.Equal(t, SliceType{Elem: NamedType{Name: "string"}}, types["Env"])
	assert.Equal(t, MapType{
		Key:   NamedType{Name: "string"},
		Value: PointerType{Elem: NamedType{PkgPath: "gopkg.in/yaml.v3", Pkg: "yaml", Name: "Node"}},
	}, types["Labels"])
	assert.Equal(t, PointerType{Elem: NamedType{PkgPath: "time", Pkg: "time", Name: "Duration"}}, types["Timeout"])
	assert.Equal(t, RawType{Spelling: "func(context.Context) error", Imports: map[string]string{"context": "context"}}, types["Run"])
	assert.Equal(t, ArrayType{Len: "8", Elem: NamedType{Name: "byte"}}, types["Buf"])
	assert.Equal(t, NamedType{Name: "Pair", Args: []TypeExpr{NamedType{Name: "int"}, NamedType{Name: "string"}}}, types["Pair"])

	assert.Equal(t, []Annotation{{Args: `each = "AddEnv"`, Raw: `@Builder(each = "AddEnv")`}}, rec.Fields[2].Annotations)
	assert.Equal(t, []Annotation{{Args: `each="AddLabel"`, Raw: `@Builder(each="AddLabel")`}}, rec.Fields[3].Annotations)
	assert.Empty(t, rec.Fields[0].Annotations)
}

func TestDescribeShapes(t *testing.T) {
	tests := []struct {
		name  string
		shape RecordShape
	}{
		{name: "Number", shape: ShapeNonStruct},
		{name: "Empty", shape: ShapeEmptyStruct},
		{name: "Wrapper", shape: ShapeEmbedded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := describe(t, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.shape, rec.Shape)

			_, err = Synthesize(rec)
			assert.ErrorIs(t, err, ErrUnsupportedRecordShape)
		})
	}

	rec, err := describe(t, "Generic")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.TypeParams)
	_, err = Synthesize(rec)
	assert.ErrorIs(t, err, ErrUnsupportedRecordShape)
}

func TestDescribeAccumulatingMap(t *testing.T) {
	rec, err := describe(t, "Command")
	require.NoError(t, err)
	_, err = Synthesize(rec)
	assert.ErrorIs(t, err, ErrAnnotationTypeMismatch, "map 不是可累加的序列")
}

func TestDescribeUnknownPackage(t *testing.T) {
	ctx := structparse.NewParseContextWithResolver(fakeResolver{})
	info, err := ctx.ParseSource("x.go", "package x\n\ntype X struct{ V missing.T }\n", "X")
	require.NoError(t, err)
	_, err = Describe(info)
	assert.ErrorContains(t, err, `unknown package "missing"`)
}

func TestFieldAnnotations(t *testing.T) {
	src := `package x

type X struct {
	// 普通注释
	// @Builder(each = "A") 其余文字
	A []int /* @Builder(each = "B") */
	C int // @Builder
}
`
	file, err := parser.ParseFile(token.NewFileSet(), "", src, parser.ParseComments)
	require.NoError(t, err)
	fields := file.Decls[0].(*ast.GenDecl).Specs[0].(*ast.TypeSpec).Type.(*ast.StructType).Fields.List

	anns := FieldAnnotations(fields[0].Doc, fields[0].Comment)
	require.Len(t, anns, 2)
	assert.Equal(t, `each = "A"`, anns[0].Args)
	assert.Equal(t, `each = "B"`, anns[1].Args)

	anns = FieldAnnotations(fields[1].Doc, fields[1].Comment)
	assert.Equal(t, []Annotation{{Args: "", Raw: "@Builder"}}, anns)

	assert.Empty(t, FieldAnnotations(nil))
}
