package buildergen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"path"
	"strconv"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/go/ast/astutil"
)

// RenderFile 把一个或多个记录的 Builder 渲染为完整的 Go 源文件
func RenderFile(pkg string, decls ...*Declarations) ([]byte, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by buildgen. DO NOT EDIT.")
	f.ImportName(moPkgPath, "mo")
	f.ImportName(runtimePkgPath, "builder")

	refs := make(map[string]pkgRef)
	for _, d := range decls {
		for _, m := range d.Methods {
			collectRefs(m.Arg, refs)
		}
		for _, s := range d.Slots {
			collectRefs(s.Storage, refs)
		}
	}
	for p, ref := range refs {
		if ref.alias {
			f.ImportAlias(p, ref.name)
		} else {
			f.ImportName(p, ref.name)
		}
	}

	for _, d := range decls {
		d.Render(f)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("渲染 %s 失败: %w", pkg, err)
	}
	return addRawImports(buf.Bytes(), refs)
}

// Render 把声明追加到 jen.File
func (d *Declarations) Render(f *jen.File) {
	f.Comment(fmt.Sprintf("%s 用于逐字段构造 %s", d.Builder, d.Record))
	f.Type().Id(d.Builder).StructFunc(func(g *jen.Group) {
		for _, s := range d.Slots {
			g.Id(s.Name).Add(typeCode(s.Storage))
		}
	})
	f.Line()

	f.Comment(fmt.Sprintf("%s 创建一个空的 %s", d.Factory, d.Builder))
	f.Func().Id(d.Factory).Params().Op("*").Id(d.Builder).Block(
		jen.Return(jen.Op("&").Id(d.Builder).ValuesFunc(func(g *jen.Group) {
			empty := false
			for _, s := range d.Slots {
				if s.Init == InitEmpty {
					g.Line().Id(s.Name).Op(":").Add(typeCode(s.Storage)).Values()
					empty = true
				}
			}
			if empty {
				g.Line()
			}
		})),
	)

	for _, m := range d.Methods {
		f.Line()
		d.renderMethod(f, m)
	}

	f.Line()
	d.renderFinalizer(f)
}

func (d *Declarations) renderMethod(f *jen.File, m Method) {
	var stmt *jen.Statement
	switch m.Op {
	case OpAppend:
		f.Comment(fmt.Sprintf("%s 向 %s 追加一个元素", m.Name, m.Field))
		stmt = jen.Id(receiverName).Dot(m.Slot).Op("=").Append(jen.Id(receiverName).Dot(m.Slot), jen.Id(m.Param))
	default:
		f.Comment(fmt.Sprintf("%s 设置 %s", m.Name, m.Field))
		stmt = jen.Id(receiverName).Dot(m.Slot).Op("=").Add(funcCode(m.Some)).Call(jen.Id(m.Param))
	}
	f.Func().
		Params(jen.Id(receiverName).Op("*").Id(d.Builder)).
		Id(m.Name).
		Params(jen.Id(m.Param).Add(typeCode(m.Arg))).
		Op("*").Id(d.Builder).
		Block(stmt, jen.Return(jen.Id(receiverName)))
}

func (d *Declarations) renderFinalizer(f *jen.File) {
	fin := d.Finalizer
	f.Comment(fmt.Sprintf("%s 校验必填字段并返回 %s", fin.Name, d.Record))
	f.Func().
		Params(jen.Id(receiverName).Op("*").Id(d.Builder)).
		Id(fin.Name).
		Params().
		Params(jen.Op("*").Id(d.Record), jen.Error()).
		BlockFunc(func(g *jen.Group) {
			for _, s := range fin.Steps {
				slot := jen.Id(receiverName).Dot(s.Slot)
				switch s.Op {
				case ExtractRequired:
					g.List(jen.Id(s.Var), jen.Id("ok")).Op(":=").
						Qual(runtimePkgPath, "Take").Call(jen.Op("&").Add(slot)).Dot("Get").Call()
					g.If(jen.Op("!").Id("ok")).Block(
						jen.Return(jen.Nil(), jen.Qual(runtimePkgPath, "MissingField").Call(jen.Lit(s.Field), jen.Lit(s.Setter))),
					)
				case ExtractTake:
					g.Id(s.Var).Op(":=").Qual(runtimePkgPath, "Take").Call(jen.Op("&").Add(slot))
				case ExtractSnapshot:
					g.Id(s.Var).Op(":=").Qual(runtimePkgPath, "Snapshot").Call(slot)
				}
			}
			g.Return(
				jen.Op("&").Id(d.Record).ValuesFunc(func(g *jen.Group) {
					for _, s := range fin.Steps {
						g.Line().Id(s.Field).Op(":").Id(s.Var)
					}
					g.Line()
				}),
				jen.Nil(),
			)
		})
}

// typeCode TypeExpr 转 jen 代码，具名类型通过 Qual 引用以便自动管理 import
func typeCode(t TypeExpr) jen.Code {
	switch t := t.(type) {
	case NamedType:
		var s *jen.Statement
		if t.PkgPath != "" {
			s = jen.Qual(t.PkgPath, t.Name)
		} else {
			s = jen.Id(t.Name)
		}
		if len(t.Args) > 0 {
			args := make([]jen.Code, len(t.Args))
			for i, a := range t.Args {
				args[i] = typeCode(a)
			}
			s = s.Types(args...)
		}
		return s
	case SliceType:
		return jen.Index().Add(typeCode(t.Elem))
	case PointerType:
		return jen.Op("*").Add(typeCode(t.Elem))
	case MapType:
		return jen.Map(typeCode(t.Key)).Add(typeCode(t.Value))
	case ArrayType:
		return jen.Index(jen.Op(t.Len)).Add(typeCode(t.Elem))
	case RawType:
		return jen.Op(t.Spelling)
	}
	panic(fmt.Sprintf("unexpected type expression %T", t))
}

func funcCode(ref FuncRef) *jen.Statement {
	if ref.PkgPath == "" {
		return jen.Id(ref.Name)
	}
	return jen.Qual(ref.PkgPath, ref.Name)
}

type pkgRef struct {
	name  string
	alias bool
	raw   bool // 仅出现在 RawType 中，jen 无法感知
}

func collectRefs(t TypeExpr, into map[string]pkgRef) {
	switch t := t.(type) {
	case NamedType:
		if t.PkgPath != "" && t.Pkg != "" {
			if _, ok := into[t.PkgPath]; !ok {
				into[t.PkgPath] = pkgRef{name: t.Pkg, alias: t.Alias}
			}
		}
		for _, a := range t.Args {
			collectRefs(a, into)
		}
	case SliceType:
		collectRefs(t.Elem, into)
	case PointerType:
		collectRefs(t.Elem, into)
	case ArrayType:
		collectRefs(t.Elem, into)
	case MapType:
		collectRefs(t.Key, into)
		collectRefs(t.Value, into)
	case RawType:
		for p, name := range t.Imports {
			if _, ok := into[p]; !ok {
				into[p] = pkgRef{name: name, alias: name != path.Base(p), raw: true}
			}
		}
	}
}

// addRawImports 补上 RawType 中引用但 jen 未输出的 import
func addRawImports(src []byte, refs map[string]pkgRef) ([]byte, error) {
	var raw []string
	for p, ref := range refs {
		if ref.raw {
			raw = append(raw, p)
		}
	}
	if len(raw) == 0 {
		return src, nil
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("解析生成代码失败: %w", err)
	}
	existing := make(map[string]bool)
	for _, imp := range file.Imports {
		if p, err := strconv.Unquote(imp.Path.Value); err == nil {
			existing[p] = true
		}
	}
	for _, p := range raw {
		if existing[p] {
			continue
		}
		name := ""
		if refs[p].alias {
			name = refs[p].name
		}
		astutil.AddNamedImport(fset, file, name, p)
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, fmt.Errorf("格式化生成代码失败: %w", err)
	}
	return buf.Bytes(), nil
}
