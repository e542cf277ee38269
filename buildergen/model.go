package buildergen

import (
	"strings"
)

// RecordShape 记录类型的外形
type RecordShape int

const (
	ShapeStruct      RecordShape = iota // 普通具名字段结构体
	ShapeEmptyStruct                    // struct{}，没有字段
	ShapeNonStruct                      // 不是结构体，如 type X int
	ShapeEmbedded                       // 含匿名嵌入字段
)

func (s RecordShape) String() string {
	switch s {
	case ShapeStruct:
		return "struct"
	case ShapeEmptyStruct:
		return "empty struct"
	case ShapeNonStruct:
		return "non-struct"
	case ShapeEmbedded:
		return "struct with embedded fields"
	default:
		return "unknown"
	}
}

// RecordDescription 生成器的输入：一个待生成 Builder 的记录类型
type RecordDescription struct {
	Name       string             // 类型名
	Package    string             // 包名
	Shape      RecordShape        // 外形
	TypeParams int                // 类型参数个数，非 0 表示泛型
	Fields     []FieldDescription // 字段列表，顺序即声明顺序
}

// FieldDescription 记录中的一个字段
type FieldDescription struct {
	Name        string       // 字段名
	Type        TypeExpr     // 声明类型
	Annotations []Annotation // 字段上的 @Builder(...) 注解，正常情况下最多一个
}

// Annotation 字段注解的原始形式
type Annotation struct {
	Args string // 括号内的原始文本，如 each = "AddEnv"
	Raw  string // 完整注解文本，用于错误信息
}

// TypeExpr 字段声明类型的结构化表示
type TypeExpr interface {
	typeExpr()
	String() string
}

// NamedType 标识符、限定标识符或泛型实例化
type NamedType struct {
	PkgPath string     // 导入路径，本包类型为空
	Pkg     string     // 源码中的限定符（别名或包名）
	Alias   bool       // Pkg 是否为 import 显式别名
	Name    string     // 类型名
	Args    []TypeExpr // 类型实参
}

// SliceType []Elem
type SliceType struct {
	Elem TypeExpr
}

// PointerType *Elem
type PointerType struct {
	Elem TypeExpr
}

// MapType map[Key]Value
type MapType struct {
	Key   TypeExpr
	Value TypeExpr
}

// ArrayType [Len]Elem
type ArrayType struct {
	Len  string
	Elem TypeExpr
}

// RawType 其余所有类型（func、chan、interface、匿名 struct 等），原样输出
type RawType struct {
	Spelling string
	Imports  map[string]string // 其中引用的包，导入路径 -> 限定符
}

func (NamedType) typeExpr()   {}
func (SliceType) typeExpr()   {}
func (PointerType) typeExpr() {}
func (MapType) typeExpr()     {}
func (ArrayType) typeExpr()   {}
func (RawType) typeExpr()     {}

func (t NamedType) String() string {
	var sb strings.Builder
	if t.Pkg != "" {
		sb.WriteString(t.Pkg)
		sb.WriteByte('.')
	}
	sb.WriteString(t.Name)
	if len(t.Args) > 0 {
		sb.WriteByte('[')
		for i, a := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.String())
		}
		sb.WriteByte(']')
	}
	return sb.String()
}

func (t SliceType) String() string   { return "[]" + t.Elem.String() }
func (t PointerType) String() string { return "*" + t.Elem.String() }
func (t MapType) String() string     { return "map[" + t.Key.String() + "]" + t.Value.String() }
func (t ArrayType) String() string   { return "[" + t.Len + "]" + t.Elem.String() }
func (t RawType) String() string     { return t.Spelling }

// TypeShape 分类器看到的类型外形
type TypeShape interface {
	typeShape()
}

// ShapePlain 非泛型具名类型
type ShapePlain struct{}

// ShapeGenericOne 单类型参数泛型，Name 为最后一段名称
type ShapeGenericOne struct {
	Name string
	Arg  TypeExpr
}

// ShapeSequence 可增长的有序序列，即切片
type ShapeSequence struct {
	Elem TypeExpr
}

// ShapeOther 其他所有外形
type ShapeOther struct{}

func (ShapePlain) typeShape()      {}
func (ShapeGenericOne) typeShape() {}
func (ShapeSequence) typeShape()   {}
func (ShapeOther) typeShape()      {}

// Shape 把类型投影到分类器使用的封闭外形集合上
func Shape(t TypeExpr) TypeShape {
	switch t := t.(type) {
	case NamedType:
		switch len(t.Args) {
		case 0:
			return ShapePlain{}
		case 1:
			return ShapeGenericOne{Name: lastSegment(t.Name), Arg: t.Args[0]}
		}
	case SliceType:
		return ShapeSequence{Elem: t.Elem}
	}
	return ShapeOther{}
}

// lastSegment 取路径最后一段，兼容 mo.Option 和 github.com/samber/mo.Option 两种写法
func lastSegment(name string) string {
	if i := strings.LastIndexAny(name, "./"); i >= 0 {
		return name[i+1:]
	}
	return name
}
