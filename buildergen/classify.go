package buildergen

// optionalNames 视为"可选"外形的单参数泛型名称（取最后一段）
var optionalNames = map[string]bool{
	"Option":   true, // github.com/samber/mo
	"Optional": true,
}

// Kind 字段分类
type Kind int

const (
	KindRequired     Kind = iota + 1 // 普通字段，Build 时必须已设置
	KindOptional                     // Option[T] 字段，未设置时保持缺省
	KindAccumulating                 // 带 each 指令的切片字段，逐个追加元素
)

func (k Kind) String() string {
	switch k {
	case KindRequired:
		return "required"
	case KindOptional:
		return "optional"
	case KindAccumulating:
		return "accumulating"
	default:
		return "unknown"
	}
}

// Classification 单个字段的分类结果
type Classification struct {
	Kind Kind

	// Type 字段声明类型
	Type TypeExpr

	// Inner 对 Optional 是 Option 的类型实参，对 Accumulating 是切片元素类型，
	// 对 Required 与 Type 相同
	Inner TypeExpr

	// Method 累加方法名，仅 Accumulating 有值
	Method string
}

// Classify 根据声明类型和注解决定字段的表示方式，是纯函数
func Classify(field FieldDescription) (Classification, error) {
	directive, err := Interpret(field.Annotations)
	if err != nil {
		return Classification{}, err
	}

	if directive.HasEach() {
		seq, ok := Shape(field.Type).(ShapeSequence)
		if !ok {
			return Classification{}, errTypeMismatch(field.Type)
		}
		return Classification{
			Kind:   KindAccumulating,
			Type:   field.Type,
			Inner:  seq.Elem,
			Method: directive.Each,
		}, nil
	}

	if g, ok := Shape(field.Type).(ShapeGenericOne); ok && optionalNames[g.Name] {
		return Classification{
			Kind:  KindOptional,
			Type:  field.Type,
			Inner: g.Arg,
		}, nil
	}

	return Classification{
		Kind:  KindRequired,
		Type:  field.Type,
		Inner: field.Type,
	}, nil
}

// typeMismatchError 注解字段的类型不是容器
type typeMismatchError struct {
	typ TypeExpr
}

func (e *typeMismatchError) Error() string {
	return "each requires a slice type, got " + e.typ.String()
}

func errTypeMismatch(t TypeExpr) error {
	return &typeMismatchError{typ: t}
}
