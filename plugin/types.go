package plugin

import (
	"go/ast"
	"go/token"
	"path/filepath"

	"github.com/donutnomad/gg"
)

// TargetKind 表示注解目标的类型
type TargetKind int

const (
	TargetStruct TargetKind = iota + 1 // 结构体
	TargetType                         // 其他类型声明，如 type X int、type X = Y
)

func (k TargetKind) String() string {
	switch k {
	case TargetStruct:
		return "struct"
	case TargetType:
		return "type"
	default:
		return "unknown"
	}
}

// ParamDef 定义注解参数的元信息
type ParamDef struct {
	Name        string // 参数名称
	Required    bool   // 是否必填
	Default     string // 默认值（如果不是必填）
	Description string // 参数描述
}

// Annotation 表示解析后的注解
type Annotation struct {
	Name   string            // 注解名称，如 "Builder"
	Params map[string]string // 注解参数，如 name=`CmdBuilder`
	Raw    string            // 原始注解文本
}

// Target 表示注解的目标
type Target struct {
	Kind        TargetKind // 目标类型
	Name        string     // 类型名
	PackageName string     // 包名
	FilePath    string     // 文件路径
	Position    token.Pos  // 位置信息

	// AST 节点（可选，用于深度解析）
	Node *ast.TypeSpec
}

// AnnotatedTarget 表示带注解的目标
type AnnotatedTarget struct {
	Target       *Target       // 目标信息
	Annotations  []*Annotation // 注解列表
	ParsedParams any           // 解析后的参数结构体
}

// ScanResult 表示扫描结果
type ScanResult struct {
	Targets []*AnnotatedTarget // 带注解的类型声明

	// PackageConfigs 包级配置
	// key: 包目录
	PackageConfigs map[string]*PackageConfig
}

// All 返回所有带注解的目标
func (r *ScanResult) All() []*AnnotatedTarget {
	return r.Targets
}

// ByAnnotation 按注解名称过滤
func (r *ScanResult) ByAnnotation(name string) []*AnnotatedTarget {
	var result []*AnnotatedTarget
	for _, t := range r.Targets {
		if HasAnnotation(t.Annotations, name) {
			result = append(result, t)
		}
	}
	return result
}

// GenerateContext 生成上下文，传递给 Generator
type GenerateContext struct {
	Targets        []*AnnotatedTarget        // 该 Generator 需要处理的目标
	PackageConfigs map[string]*PackageConfig // 包级配置，key: 包目录
	DefaultOutput  string                    // 命令行指定的默认输出路径（最低优先级）
	Verbose        bool                      // 详细输出
}

// GetPackageConfig 获取源文件所在包的配置
func (c *GenerateContext) GetPackageConfig(filePath string) *PackageConfig {
	if c.PackageConfigs == nil {
		return nil
	}
	return c.PackageConfigs[filepath.Dir(filePath)]
}

// GenerateResult 生成结果
// Generator 可以返回 gg 定义或原始源码，由聚合器统一合并写入
type GenerateResult struct {
	// Definitions 是生成的 gg 定义
	// key: 输出文件路径
	Definitions map[string]*gg.Generator

	// RawOutputs 原始 Go 源码，写入前会被解析为 gg 定义再合并
	// key: 输出文件路径
	RawOutputs map[string][]byte

	// Errors 错误列表
	Errors []error

	// Skipped 跳过的数量
	Skipped int
}

// PackageConfig 包级生成配置
// 通过 // go:buildgen: 注释定义，对同一目录下的所有文件生效
// 示例:
//
//	// go:buildgen: -output `$FILE_builder`
//	// go:buildgen: plugin:buildergen -output `builders`
type PackageConfig struct {
	PackageDir string // 包目录

	// DefaultOutput 默认输出路径（对所有插件生效）
	DefaultOutput string

	// PluginOutputs 插件特定的输出路径
	// key: 插件名（小写）, value: 输出路径
	PluginOutputs map[string]string
}

// GetPluginOutput 获取指定插件的输出路径
// 优先返回插件特定配置，其次返回默认配置，最后返回空字符串
func (c *PackageConfig) GetPluginOutput(pluginName string) string {
	if c == nil {
		return ""
	}
	if output, ok := c.PluginOutputs[pluginName]; ok {
		return output
	}
	return c.DefaultOutput
}

// NewGenerateResult 创建新的生成结果
func NewGenerateResult() *GenerateResult {
	return &GenerateResult{
		Definitions: make(map[string]*gg.Generator),
		RawOutputs:  make(map[string][]byte),
	}
}

// AddDefinition 添加 gg 定义
func (r *GenerateResult) AddDefinition(path string, gen *gg.Generator) {
	if r.Definitions == nil {
		r.Definitions = make(map[string]*gg.Generator)
	}
	r.Definitions[path] = gen
}

// AddRawOutput 添加原始源码输出
func (r *GenerateResult) AddRawOutput(path string, src []byte) {
	if r.RawOutputs == nil {
		r.RawOutputs = make(map[string][]byte)
	}
	r.RawOutputs[path] = src
}

// AddError 添加错误
func (r *GenerateResult) AddError(err error) {
	r.Errors = append(r.Errors, err)
}

// HasErrors 检查是否有错误
func (r *GenerateResult) HasErrors() bool {
	return len(r.Errors) > 0
}
