package buildergen

import (
	"github.com/donutnomad/buildgen/internal/utils"
)

// receiverName 所有 Builder 方法的接收者名
const receiverName = "b"

// MutatorOp 设置方法的动作
type MutatorOp int

const (
	OpSet    MutatorOp = iota + 1 // b.slot = Some(v)
	OpAppend                      // b.slot = append(b.slot, v)
)

// FuncRef 对函数的引用，PkgPath 为空表示本包
type FuncRef struct {
	PkgPath string
	Name    string
}

// Method Builder 上的一个设置方法
type Method struct {
	Name  string    // 方法名
	Param string    // 参数名
	Arg   TypeExpr  // 参数类型
	Slot  string    // 修改的存储字段
	Field string    // 对应的记录字段
	Op    MutatorOp // 动作
	Some  FuncRef   // OpSet 时用于包装参数的构造函数
}

// synthesizeMethods 每个字段生成恰好一个设置方法，顺序与字段一致。
// 带 each 指令的字段只生成按元素追加的方法，不生成整体 setter。
func synthesizeMethods(record string, slots []Slot, cls []Classification) []Method {
	reserved := reservedParamNames(record, cls)

	methods := make([]Method, 0, len(slots))
	for i, slot := range slots {
		c := cls[i]
		m := Method{
			Slot:  slot.Name,
			Field: slot.Field,
			Arg:   c.Inner,
		}
		m.Name = methodName(slot.Field, c)
		switch c.Kind {
		case KindRequired:
			m.Op = OpSet
			m.Some = FuncRef{PkgPath: moPkgPath, Name: "Some"}
		case KindOptional:
			m.Op = OpSet
			m.Some = FuncRef{PkgPath: c.Type.(NamedType).PkgPath, Name: "Some"}
		case KindAccumulating:
			m.Op = OpAppend
		}
		// 参数名同时是 Build 中的局部变量，需要互不相同
		m.Param = paramName(slotName(slot.Field), reserved)
		reserved[m.Param] = true
		methods = append(methods, m)
	}
	return methods
}

// methodName 累加字段使用 each 指定的方法名，其余字段使用 setter 名
func methodName(field string, c Classification) string {
	if c.Kind == KindAccumulating {
		return c.Method
	}
	return setterName(field)
}

// setterName 整体 setter 以字段命名，首字母大写
func setterName(field string) string {
	return utils.UpperFirst(field)
}

// reservedParamNames 方法体和 Build 中会用到的标识符，参数及局部变量不能遮蔽它们
func reservedParamNames(record string, cls []Classification) map[string]bool {
	reserved := map[string]bool{
		receiverName: true,
		record:       true,
		"append":     true,
		"mo":         true,
		"builder":    true,
		"ok":         true,
		"nil":        true,
	}
	for _, c := range cls {
		collectPkgNames(c.Type, reserved)
	}
	return reserved
}

func collectPkgNames(t TypeExpr, into map[string]bool) {
	switch t := t.(type) {
	case NamedType:
		if t.Pkg != "" {
			into[t.Pkg] = true
		}
		for _, a := range t.Args {
			collectPkgNames(a, into)
		}
	case SliceType:
		collectPkgNames(t.Elem, into)
	case PointerType:
		collectPkgNames(t.Elem, into)
	case ArrayType:
		collectPkgNames(t.Elem, into)
	case MapType:
		collectPkgNames(t.Key, into)
		collectPkgNames(t.Value, into)
	case RawType:
		for _, name := range t.Imports {
			into[name] = true
		}
	}
}

func paramName(base string, reserved map[string]bool) string {
	return uniqueName(base, "Val", reserved)
}
