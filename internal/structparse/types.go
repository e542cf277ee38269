package structparse

import (
	"go/ast"
)

// TypeKind 类型声明的种类
type TypeKind int

const (
	KindStruct    TypeKind = iota + 1 // type X struct{...}
	KindNonStruct                     // type X int、type X = Y 等
)

func (k TypeKind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindNonStruct:
		return "non-struct"
	default:
		return "unknown"
	}
}

// ImportInfo 导入信息
type ImportInfo struct {
	Alias       string // 显式别名（如果有）
	PackageName string // 真实包名（从 package 声明读取）
	ImportPath  string // 完整导入路径
}

// Qualifier 源码中引用该包使用的名字
func (i *ImportInfo) Qualifier() string {
	if i.Alias != "" {
		return i.Alias
	}
	return i.PackageName
}

// FieldInfo 表示结构体字段信息
type FieldInfo struct {
	Name     string            // 字段名，嵌入字段为类型名
	Type     ast.Expr          // 字段类型
	TypeText string            // 字段类型的源码文本
	Tag      string            // 字段标签（不含反引号）
	Doc      *ast.CommentGroup // 字段上方的注释
	Comment  *ast.CommentGroup // 行尾注释
	Embedded bool              // 是否匿名嵌入
}

// StructInfo 表示结构体信息
type StructInfo struct {
	Name        string      // 结构体名称
	PackageName string      // 包名
	FilePath    string      // 结构体所在文件路径
	Kind        TypeKind    // 声明种类
	TypeParams  int         // 类型参数个数
	Fields      []FieldInfo // 字段列表，多名字段 a, b int 展开为多项
	Doc         *ast.CommentGroup

	// Imports 文件的导入信息
	// key: 源码中的限定符（别名或真实包名）
	Imports map[string]*ImportInfo
}

// HasEmbedded 是否含有匿名嵌入字段
func (s *StructInfo) HasEmbedded() bool {
	for _, f := range s.Fields {
		if f.Embedded {
			return true
		}
	}
	return false
}
