package structparse

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strconv"
)

// ParseStruct 解析指定文件中的结构体（包级便捷函数）
func ParseStruct(filename, structName string) (*StructInfo, error) {
	return NewParseContext().ParseStruct(filename, structName)
}

// ParseStruct 解析指定文件中的类型声明
func (c *ParseContext) ParseStruct(filename, structName string) (*StructInfo, error) {
	return c.ParseSource(filename, nil, structName)
}

// ParseSource 与 ParseStruct 相同，src 非空时不读取磁盘
func (c *ParseContext) ParseSource(filename string, src any, structName string) (*StructInfo, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("解析文件失败: %w", err)
	}

	spec, doc := findTypeSpec(file, structName)
	if spec == nil {
		return nil, fmt.Errorf("未找到类型 %s", structName)
	}

	info := &StructInfo{
		Name:        structName,
		PackageName: file.Name.Name,
		FilePath:    filename,
		Kind:        KindNonStruct,
		Doc:         doc,
		Imports:     c.extractImports(file),
	}
	if spec.TypeParams != nil {
		info.TypeParams = spec.TypeParams.NumFields()
	}

	st, ok := spec.Type.(*ast.StructType)
	if !ok || spec.Assign.IsValid() {
		return info, nil
	}
	info.Kind = KindStruct
	info.Fields = parseFields(st.Fields.List)
	return info, nil
}

// findTypeSpec 查找类型声明，单独声明时文档注释挂在 GenDecl 上
func findTypeSpec(file *ast.File, name string) (*ast.TypeSpec, *ast.CommentGroup) {
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			typeSpec := spec.(*ast.TypeSpec)
			if typeSpec.Name.Name != name {
				continue
			}
			doc := typeSpec.Doc
			if doc == nil && len(genDecl.Specs) == 1 {
				doc = genDecl.Doc
			}
			return typeSpec, doc
		}
	}
	return nil, nil
}

func parseFields(list []*ast.Field) []FieldInfo {
	var fields []FieldInfo
	for _, field := range list {
		var tag string
		if field.Tag != nil {
			tag, _ = strconv.Unquote(field.Tag.Value)
		}
		base := FieldInfo{
			Type:     field.Type,
			TypeText: types.ExprString(field.Type),
			Tag:      tag,
			Doc:      field.Doc,
			Comment:  field.Comment,
		}

		if len(field.Names) == 0 {
			base.Name = embeddedName(field.Type)
			base.Embedded = true
			fields = append(fields, base)
			continue
		}
		for _, name := range field.Names {
			f := base
			f.Name = name.Name
			fields = append(fields, f)
		}
	}
	return fields
}

// embeddedName 嵌入字段的隐式字段名
func embeddedName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(t.X)
	case *ast.IndexListExpr:
		return embeddedName(t.X)
	}
	return types.ExprString(expr)
}
