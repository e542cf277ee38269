package buildergen

import (
	"fmt"
	"go/ast"
	"go/types"
	"regexp"
	"strings"

	"github.com/donutnomad/buildgen/internal/structparse"
)

// AnnotationName 记录和字段上使用的注解名
const AnnotationName = "Builder"

// fieldAnnotationRegex 匹配字段注释中的 @Builder 或 @Builder(args)
var fieldAnnotationRegex = regexp.MustCompile(`@` + AnnotationName + `\b(?:\(([^)]*)\))?`)

// Describe 把解析结果转换为生成器输入
func Describe(info *structparse.StructInfo) (RecordDescription, error) {
	rec := RecordDescription{
		Name:       info.Name,
		Package:    info.PackageName,
		TypeParams: info.TypeParams,
	}
	switch {
	case info.Kind != structparse.KindStruct:
		rec.Shape = ShapeNonStruct
		return rec, nil
	case len(info.Fields) == 0:
		rec.Shape = ShapeEmptyStruct
		return rec, nil
	case info.HasEmbedded():
		rec.Shape = ShapeEmbedded
		return rec, nil
	}
	rec.Shape = ShapeStruct

	conv := typeConverter{imports: info.Imports}
	for _, f := range info.Fields {
		t, err := conv.convert(f.Type)
		if err != nil {
			return rec, fmt.Errorf("%s.%s: %w", info.Name, f.Name, err)
		}
		rec.Fields = append(rec.Fields, FieldDescription{
			Name:        f.Name,
			Type:        t,
			Annotations: FieldAnnotations(f.Doc, f.Comment),
		})
	}
	return rec, nil
}

// FieldAnnotations 从字段的文档注释和行尾注释中收集 @Builder 注解
func FieldAnnotations(groups ...*ast.CommentGroup) []Annotation {
	var anns []Annotation
	for _, g := range groups {
		if g == nil {
			continue
		}
		for _, c := range g.List {
			text := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(c.Text, "//"), "/*"), "*/"))
			for _, m := range fieldAnnotationRegex.FindAllStringSubmatch(text, -1) {
				anns = append(anns, Annotation{Args: strings.TrimSpace(m[1]), Raw: m[0]})
			}
		}
	}
	return anns
}

// typeConverter ast.Expr -> TypeExpr，限定符通过文件的 import 解析为导入路径
type typeConverter struct {
	imports map[string]*structparse.ImportInfo
}

func (c typeConverter) convert(expr ast.Expr) (TypeExpr, error) {
	switch t := expr.(type) {
	case *ast.Ident:
		return NamedType{Name: t.Name}, nil
	case *ast.SelectorExpr:
		return c.qualified(t)
	case *ast.IndexExpr:
		return c.generic(t.X, []ast.Expr{t.Index})
	case *ast.IndexListExpr:
		return c.generic(t.X, t.Indices)
	case *ast.StarExpr:
		elem, err := c.convert(t.X)
		if err != nil {
			return nil, err
		}
		return PointerType{Elem: elem}, nil
	case *ast.ParenExpr:
		return c.convert(t.X)
	case *ast.ArrayType:
		if _, ok := t.Len.(*ast.BasicLit); t.Len != nil && !ok {
			// [pkg.N]T 等常量长度原样输出
			return c.raw(t)
		}
		elem, err := c.convert(t.Elt)
		if err != nil {
			return nil, err
		}
		if t.Len == nil {
			return SliceType{Elem: elem}, nil
		}
		return ArrayType{Len: types.ExprString(t.Len), Elem: elem}, nil
	case *ast.MapType:
		key, err := c.convert(t.Key)
		if err != nil {
			return nil, err
		}
		value, err := c.convert(t.Value)
		if err != nil {
			return nil, err
		}
		return MapType{Key: key, Value: value}, nil
	}
	return c.raw(expr)
}

func (c typeConverter) qualified(sel *ast.SelectorExpr) (TypeExpr, error) {
	x, ok := sel.X.(*ast.Ident)
	if !ok {
		return nil, fmt.Errorf("unsupported type %s", types.ExprString(sel))
	}
	imp, ok := c.imports[x.Name]
	if !ok {
		return nil, fmt.Errorf("unknown package %q in type %s", x.Name, types.ExprString(sel))
	}
	return NamedType{
		PkgPath: imp.ImportPath,
		Pkg:     x.Name,
		Alias:   imp.Alias != "",
		Name:    sel.Sel.Name,
	}, nil
}

func (c typeConverter) generic(base ast.Expr, indices []ast.Expr) (TypeExpr, error) {
	b, err := c.convert(base)
	if err != nil {
		return nil, err
	}
	named, ok := b.(NamedType)
	if !ok {
		return nil, fmt.Errorf("unsupported generic type %s", types.ExprString(base))
	}
	for _, idx := range indices {
		arg, err := c.convert(idx)
		if err != nil {
			return nil, err
		}
		named.Args = append(named.Args, arg)
	}
	return named, nil
}

// raw func、chan、interface、匿名 struct 等类型原样保留，并记录其中引用的包
func (c typeConverter) raw(expr ast.Expr) (TypeExpr, error) {
	rt := RawType{Spelling: types.ExprString(expr)}
	var err error
	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return err == nil
		}
		x, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		imp, ok := c.imports[x.Name]
		if !ok {
			err = fmt.Errorf("unknown package %q in type %s", x.Name, rt.Spelling)
			return false
		}
		if rt.Imports == nil {
			rt.Imports = make(map[string]string)
		}
		rt.Imports[imp.ImportPath] = x.Name
		return false
	})
	if err != nil {
		return nil, err
	}
	return rt, nil
}
