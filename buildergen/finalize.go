package buildergen

// ExtractOp Build 中从存储取值的方式
type ExtractOp int

const (
	ExtractRequired ExtractOp = iota + 1 // 取出并清空，缺省时返回 MissingField
	ExtractTake                          // 取出并清空，允许缺省
	ExtractSnapshot                      // 复制，存储保持不变
)

func (op ExtractOp) String() string {
	switch op {
	case ExtractRequired:
		return "take-required"
	case ExtractTake:
		return "take"
	case ExtractSnapshot:
		return "snapshot"
	default:
		return "unknown"
	}
}

// Extract Build 中一个字段的取值步骤
type Extract struct {
	Field  string    // 记录字段名
	Slot   string    // Builder 存储字段名
	Var    string    // Build 中的局部变量名
	Op     ExtractOp // 取值方式
	Setter string    // 错误信息中提示的方法名
}

// Finalizer Build 方法
type Finalizer struct {
	Name  string    // 方法名
	Steps []Extract // 按字段声明顺序执行，遇到第一个缺失的必填字段即返回
}

// HasRequired 是否存在必填字段
func (f Finalizer) HasRequired() bool {
	for _, s := range f.Steps {
		if s.Op == ExtractRequired {
			return true
		}
	}
	return false
}

// synthesizeFinalizer 推导 Build 的逐字段取值表达式。
// 必填和可选字段在 Build 后被清空，累加字段只做复制，两次 Build 的行为因此不同。
func synthesizeFinalizer(name string, slots []Slot, methods []Method) Finalizer {
	fin := Finalizer{Name: name, Steps: make([]Extract, 0, len(slots))}
	for i, slot := range slots {
		step := Extract{Field: slot.Field, Slot: slot.Name, Var: methods[i].Param, Setter: methods[i].Name}
		switch slot.Kind {
		case KindRequired:
			step.Op = ExtractRequired
		case KindOptional:
			step.Op = ExtractTake
		case KindAccumulating:
			step.Op = ExtractSnapshot
		}
		fin.Steps = append(fin.Steps, step)
	}
	return fin
}
