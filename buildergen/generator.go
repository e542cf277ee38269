package buildergen

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/donutnomad/buildgen/internal/pkgresolver"
	"github.com/donutnomad/buildgen/internal/structparse"
	"github.com/donutnomad/buildgen/plugin"
	"github.com/samber/lo"
)

const (
	generatorName = "buildergen"

	// OutputSuffix 默认输出文件后缀，扫描时跳过这类文件
	OutputSuffix  = "_builder.go"
	defaultOutput = "$FILE" + OutputSuffix
)

// BuilderParams 定义 Builder 注解支持的参数
type BuilderParams struct {
	Output  string `param:"name=output,required=false,default=,description=输出文件路径"`
	Name    string `param:"name=name,required=false,default=,description=Builder 类型名，默认 <类型名>Builder"`
	Factory string `param:"name=factory,required=false,default=,description=工厂函数名，默认 New<Builder>"`
	Build   string `param:"name=build,required=false,default=Build,description=校验必填字段并返回记录的方法名"`
}

func (p BuilderParams) options() []Option {
	return []Option{
		WithBuilderName(p.Name),
		WithFactoryName(p.Factory),
		WithBuildName(p.Build),
	}
}

// BuilderGenerator 实现 plugin.Generator 接口
type BuilderGenerator struct {
	plugin.BaseGenerator
	parser *structparse.ParseContext
}

func NewBuilderGenerator() *BuilderGenerator {
	gen := &BuilderGenerator{
		BaseGenerator: *plugin.NewBaseGeneratorWithParamsStruct(
			generatorName,
			[]string{AnnotationName},
			// 非结构体类型也会被分发，以便报告 ErrUnsupportedRecordShape 而不是静默忽略
			[]plugin.TargetKind{plugin.TargetStruct, plugin.TargetType},
			BuilderParams{},
		),
		parser: structparse.NewParseContext(),
	}
	gen.SetPriority(10)
	return gen
}

// OutputSuffix 生成文件的后缀
func (g *BuilderGenerator) OutputSuffix() string {
	return OutputSuffix
}

// plannedRecord 一个记录的生成结果及其所属包
type plannedRecord struct {
	pkg   string
	decls *Declarations
}

// Generate 执行代码生成
func (g *BuilderGenerator) Generate(ctx *plugin.GenerateContext) (*plugin.GenerateResult, error) {
	result := plugin.NewGenerateResult()

	// key: 输出路径
	fileRecords := make(map[string][]plannedRecord)

	for _, at := range ctx.Targets {
		ann := plugin.GetAnnotation(at.Annotations, AnnotationName)
		if ann == nil {
			continue
		}

		var params BuilderParams
		if at.ParsedParams != nil {
			var ok bool
			params, ok = at.ParsedParams.(BuilderParams)
			if !ok {
				result.AddError(fmt.Errorf("ParsedParams 类型断言失败: %T", at.ParsedParams))
				continue
			}
		}
		if ctx.Verbose {
			fmt.Printf("[buildergen] %s 参数: %s", at.Target.Name, spew.Sdump(params))
		}

		decls, err := g.plan(at.Target.FilePath, at.Target.Name, params.options()...)
		if err != nil {
			result.AddError(err)
			continue
		}

		outputPath := plugin.GetOutputPath(at.Target, ann, defaultOutput, ctx.GetPackageConfig(at.Target.FilePath), g.Name(), ctx.DefaultOutput)
		// 记录类型以非限定名引用，输出只能与源文件同目录
		if !sameDir(outputPath, at.Target.FilePath) {
			result.AddError(fmt.Errorf("%s: 输出文件 %s 必须位于源文件目录 %s", at.Target.Name, outputPath, filepath.Dir(at.Target.FilePath)))
			continue
		}
		fileRecords[outputPath] = append(fileRecords[outputPath], plannedRecord{pkg: at.Target.PackageName, decls: decls})

		if ctx.Verbose {
			fmt.Printf("[buildergen] 处理结构体 %s -> %s\n", at.Target.Name, outputPath)
		}
	}

	outputPaths := lo.Keys(fileRecords)
	slices.Sort(outputPaths)

	for _, outputPath := range outputPaths {
		records := fileRecords[outputPath]
		// 同一文件中按记录名排序，保证输出稳定
		slices.SortFunc(records, func(a, b plannedRecord) int {
			return strings.Compare(a.decls.Record, b.decls.Record)
		})

		src, err := renderRecords(records)
		if err != nil {
			result.AddError(fmt.Errorf("生成 %s 失败: %w", outputPath, err))
			continue
		}
		result.AddRawOutput(outputPath, src)
	}

	return result, nil
}

func (g *BuilderGenerator) plan(filename, name string, opts ...Option) (*Declarations, error) {
	info, err := g.parser.ParseStruct(filename, name)
	if err != nil {
		return nil, fmt.Errorf("解析结构体 %s 失败: %w", name, err)
	}
	rec, err := Describe(info)
	if err != nil {
		return nil, err
	}
	decls, err := Synthesize(rec, opts...)
	if err != nil {
		return nil, err
	}
	if err := g.checkSomeFuncs(filename, decls); err != nil {
		return nil, err
	}
	return decls, nil
}

// dirResolver 能定位包目录的解析器
type dirResolver interface {
	Dir(importPath string) (string, error)
}

// checkSomeFuncs 可选字段的 setter 调用 Option 类型所在包的 Some，该函数必须存在
func (g *BuilderGenerator) checkSomeFuncs(filename string, d *Declarations) error {
	for _, m := range d.Methods {
		if m.Op != OpSet || m.Some.PkgPath == moPkgPath {
			continue
		}
		dir := filepath.Dir(filename)
		if m.Some.PkgPath != "" {
			r, ok := g.parser.GetResolver().(dirResolver)
			if !ok {
				continue
			}
			var err error
			if dir, err = r.Dir(m.Some.PkgPath); err != nil {
				// 找不到源码的包交给编译器检查
				continue
			}
		}
		found, err := pkgresolver.DeclaresFunc(dir, m.Some.Name)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", d.Record, m.Field, err)
		}
		if !found {
			pkg := m.Some.PkgPath
			if pkg == "" {
				pkg = "current package"
			}
			return newGenError(ErrMissingSomeFunc, d.Record, m.Field, "%s declares no func %s; use mo.Option or add one", pkg, m.Some.Name)
		}
	}
	return nil
}

func sameDir(a, b string) bool {
	da, err := filepath.Abs(filepath.Dir(a))
	if err != nil {
		return false
	}
	db, err := filepath.Abs(filepath.Dir(b))
	if err != nil {
		return false
	}
	return da == db
}

func renderRecords(records []plannedRecord) ([]byte, error) {
	pkg := records[0].pkg
	for _, r := range records[1:] {
		if r.pkg != pkg {
			return nil, fmt.Errorf("包名不一致: %s vs %s", pkg, r.pkg)
		}
	}

	decls := lo.Map(records, func(r plannedRecord, _ int) *Declarations { return r.decls })
	if err := CheckPackageCollisions(decls); err != nil {
		return nil, err
	}
	return RenderFile(pkg, decls...)
}
