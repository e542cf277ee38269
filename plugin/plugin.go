package plugin

import "reflect"

// Generator 是代码生成器接口
// 每个生成器绑定一组注解，由 Run 统一扫描、分发并合并输出
type Generator interface {
	// Name 返回生成器名称，同时用作 go:buildgen: plugin:<name> 中的插件名
	Name() string

	// Annotations 返回该生成器支持的注解列表
	// 一个注解只能绑定一个生成器
	Annotations() []string

	// SupportedTargets 返回支持的目标类型
	SupportedTargets() []TargetKind

	// ParamDefs 返回注解支持的参数定义
	ParamDefs() []ParamDef

	// NewParams 创建并返回该生成器的参数结构体实例（指针）
	// 返回 nil 表示该生成器不需要参数
	NewParams() any

	// Priority 返回生成器优先级
	// 数字越小优先级越高，输出合并时优先级高的在前面
	Priority() int

	// Generate 执行代码生成
	Generate(ctx *GenerateContext) (*GenerateResult, error)
}

// defaultPriority 未设置优先级时的默认值
const defaultPriority = 100

// BaseGenerator 提供基础实现，可嵌入
type BaseGenerator struct {
	name        string
	annotations []string
	targets     []TargetKind
	paramDefs   []ParamDef
	paramsProto any // 参数结构体原型，用于创建新实例
	priority    int
}

func NewBaseGenerator(name string, annotations []string, targets []TargetKind) *BaseGenerator {
	return &BaseGenerator{
		name:        name,
		annotations: annotations,
		targets:     targets,
		priority:    defaultPriority,
	}
}

// NewBaseGeneratorWithParamsStruct 创建带参数结构体的基础生成器
// paramsProto: 参数结构体的零值实例，例如 BuilderParams{}
func NewBaseGeneratorWithParamsStruct(name string, annotations []string, targets []TargetKind, paramsProto any) *BaseGenerator {
	g := NewBaseGenerator(name, annotations, targets)
	g.paramDefs = ParseParamsFromStruct(paramsProto)
	g.paramsProto = paramsProto
	return g
}

func (g *BaseGenerator) Name() string {
	return g.name
}

func (g *BaseGenerator) Annotations() []string {
	return g.annotations
}

func (g *BaseGenerator) SupportedTargets() []TargetKind {
	return g.targets
}

func (g *BaseGenerator) ParamDefs() []ParamDef {
	return g.paramDefs
}

// NewParams 使用反射创建参数结构体的新实例，返回指针以便设置字段值
func (g *BaseGenerator) NewParams() any {
	if g.paramsProto == nil {
		return nil
	}
	typ := reflect.TypeOf(g.paramsProto)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return reflect.New(typ).Interface()
}

// Priority 返回生成器优先级
func (g *BaseGenerator) Priority() int {
	return g.priority
}

// SetPriority 设置生成器优先级，数字越小优先级越高
func (g *BaseGenerator) SetPriority(priority int) *BaseGenerator {
	g.priority = priority
	return g
}
