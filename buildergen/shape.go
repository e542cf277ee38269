package buildergen

import (
	"github.com/donutnomad/buildgen/internal/utils"
)

// 生成代码依赖的包
const (
	moPkgPath      = "github.com/samber/mo"
	runtimePkgPath = "github.com/donutnomad/buildgen/builder"
)

// slotSuffix 存储字段名与方法名重复时追加的后缀
const slotSuffix = "Items"

// SlotInit 存储槽的初始状态
type SlotInit int

const (
	InitAbsent SlotInit = iota // 零值，即缺省
	InitEmpty                  // 非 nil 的空切片
)

// Slot Builder 结构体中的一个存储字段
type Slot struct {
	Name    string   // Builder 中的字段名
	Field   string   // 对应的记录字段名
	Kind    Kind     // 字段分类
	Storage TypeExpr // 存储类型
	Init    SlotInit // 工厂函数中的初始值
}

// synthesizeShape 按字段顺序推导 Builder 的存储布局。
// 存储字段与方法共用命名空间，存储字段名让出所有方法名和 Build 方法名。
func synthesizeShape(fields []FieldDescription, cls []Classification, buildName string) []Slot {
	taken := map[string]bool{buildName: true}
	for i, f := range fields {
		taken[methodName(f.Name, cls[i])] = true
	}

	slots := make([]Slot, 0, len(fields))
	for i, f := range fields {
		c := cls[i]
		slot := Slot{
			Name:  uniqueName(slotName(f.Name), slotSuffix, taken),
			Field: f.Name,
			Kind:  c.Kind,
		}
		taken[slot.Name] = true
		switch c.Kind {
		case KindRequired:
			slot.Storage = NamedType{PkgPath: moPkgPath, Pkg: "mo", Name: "Option", Args: []TypeExpr{c.Type}}
		case KindOptional:
			slot.Storage = c.Type
		case KindAccumulating:
			slot.Storage = SliceType{Elem: c.Inner}
			slot.Init = InitEmpty
		}
		slots = append(slots, slot)
	}
	return slots
}

// slotName Builder 存储字段名：小驼峰，避开关键字
func slotName(field string) string {
	return utils.SafeIdent(utils.LowerCamelCase(field))
}

// uniqueName 在 base 后追加后缀直到不与 taken 重复
func uniqueName(base, suffix string, taken map[string]bool) string {
	name := base
	for taken[name] {
		name += suffix
	}
	return name
}
