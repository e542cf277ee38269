package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/donutnomad/buildgen/internal/utils"
	"github.com/donutnomad/gg"
	"github.com/samber/lo"
)

// GeneratedHeader 生成文件的头部注释
const GeneratedHeader = "Code generated by buildgen. DO NOT EDIT."

// ErrStale -check 模式下生成结果与磁盘上的文件不一致
var ErrStale = errors.New("生成文件已过期")

// Run 运行代码生成
// 1. 扫描指定路径的注解
// 2. 将目标分发给对应的生成器
// 3. 执行生成器
// 4. 合并同一文件的 gg 定义并写入文件
func Run(ctx context.Context, registry *Registry, patterns ...string) error {
	return RunWithOptions(ctx, &RunOptions{
		Registry: registry,
		Patterns: patterns,
	})
}

// RunGlobal 使用全局注册表运行
func RunGlobal(ctx context.Context, patterns ...string) error {
	return Run(ctx, globalRegistry, patterns...)
}

// RunOptions 运行选项
type RunOptions struct {
	Registry *Registry
	Patterns []string
	Verbose  bool
	Output   string // 命令行指定的默认输出路径（最低优先级）
	Async    bool   // 是否并行执行生成器
	NoOutput bool   // 只生成不写入
	Check    bool   // 对比磁盘上的文件，不写入；有差异时返回 ErrStale
}

// RunStats 运行统计信息
type RunStats struct {
	ScanDuration     time.Duration // 扫描耗时
	GenerateDuration time.Duration // 生成耗时
	TotalDuration    time.Duration // 总耗时
	TargetCount      int           // 目标数量
	FileCount        int           // 生成文件数量
	StaleFiles       []string      // -check 模式下过期的文件
}

// RunWithOptions 带选项运行
func RunWithOptions(ctx context.Context, opts *RunOptions) error {
	_, err := RunWithOptionsAndStats(ctx, opts)
	return err
}

// RunWithOptionsAndStats 带选项运行并返回统计信息
func RunWithOptionsAndStats(ctx context.Context, opts *RunOptions) (*RunStats, error) {
	totalStart := time.Now()
	stats := &RunStats{}

	registry := opts.Registry
	if registry == nil {
		registry = globalRegistry
	}

	annotations := registry.Annotations()
	if len(annotations) == 0 {
		return nil, fmt.Errorf("没有已注册的生成器")
	}

	// 扫描
	scanStart := time.Now()
	scanner := NewScanner(
		WithAnnotationFilter(annotations...),
		WithScannerVerbose(opts.Verbose),
		WithSkipSuffixes(GeneratedSuffixes(registry)...),
	)
	result, err := scanner.Scan(ctx, opts.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("扫描失败: %w", err)
	}
	stats.ScanDuration = time.Since(scanStart)
	stats.TargetCount = len(result.All())

	if stats.TargetCount == 0 {
		if opts.Verbose {
			fmt.Println("没有找到任何带注解的目标")
		}
		stats.TotalDuration = time.Since(totalStart)
		return stats, nil
	}
	if opts.Verbose {
		fmt.Printf("找到 %d 个带注解的目标 (扫描耗时: %v)\n", stats.TargetCount, stats.ScanDuration)
	}

	generateStart := time.Now()
	dispatch := registry.DispatchTargets(result)

	// 按优先级排序生成器（优先级数字越小越靠前）
	gens := lo.FilterMap(registry.Generators(), func(g Generator, _ int) (Generator, bool) {
		_, ok := dispatch[g.Name()]
		return g, ok
	})

	// 先串行解析所有目标的参数，生成器并发执行时只读
	var allErrors []error
	for _, gen := range gens {
		allErrors = append(allErrors, bindParams(gen, dispatch[gen.Name()])...)
	}

	results, errs := executeGenerators(gens, dispatch, result.PackageConfigs, opts)
	allErrors = append(allErrors, errs...)

	// 按优先级顺序收集 gg 定义，按输出文件分组
	files := make(map[string]*outputFile)
	var paths []string
	add := func(path, genName string, def *gg.Generator) {
		f, ok := files[path]
		if !ok {
			f = &outputFile{}
			files[path] = f
			paths = append(paths, path)
		}
		f.defs = append(f.defs, def)
		f.genNames = append(f.genNames, genName)
	}
	for _, gen := range gens {
		genResult := results[gen.Name()]
		if genResult == nil {
			continue
		}
		for _, path := range lo.Keys(genResult.Definitions) {
			add(path, gen.Name(), genResult.Definitions[path])
		}
		for path, data := range genResult.RawOutputs {
			parsed, err := ParseSourceToGG(data)
			if err != nil {
				allErrors = append(allErrors, fmt.Errorf("解析原始输出 %s 失败: %w", path, err))
				continue
			}
			add(path, gen.Name(), parsed)
		}
		allErrors = append(allErrors, genResult.Errors...)
	}
	slices.Sort(paths)

	for _, path := range paths {
		f := files[path]
		merged, err := mergeDefinitionsWithSeparator(f.defs, f.genNames)
		if err != nil {
			allErrors = append(allErrors, fmt.Errorf("合并文件 %s 的定义失败: %w", path, err))
			continue
		}

		switch {
		case opts.Check:
			diff, err := utils.Diff(path, merged.Bytes())
			if err != nil {
				allErrors = append(allErrors, err)
				continue
			}
			if diff != "" {
				stats.StaleFiles = append(stats.StaleFiles, path)
				fmt.Print(diff)
			}
		case opts.NoOutput:
			if opts.Verbose {
				fmt.Printf("跳过写入: %s\n", path)
			}
		default:
			if err := writeGGFile(path, merged); err != nil {
				allErrors = append(allErrors, fmt.Errorf("写入文件 %s 失败: %w", path, err))
				continue
			}
			fmt.Printf("生成文件: %s\n", path)
		}
		stats.FileCount++
	}

	stats.GenerateDuration = time.Since(generateStart)
	stats.TotalDuration = time.Since(totalStart)

	if len(allErrors) > 0 {
		for _, e := range allErrors {
			fmt.Printf("错误: %v\n", e)
		}
		return stats, fmt.Errorf("生成过程中出现 %d 个错误", len(allErrors))
	}
	if len(stats.StaleFiles) > 0 {
		return stats, fmt.Errorf("%w: %d 个文件需要重新生成", ErrStale, len(stats.StaleFiles))
	}
	return stats, nil
}

type outputFile struct {
	defs     []*gg.Generator
	genNames []string
}

// outputSuffixer 生成器可以声明自己输出文件的后缀，扫描时跳过这些文件
type outputSuffixer interface {
	OutputSuffix() string
}

// GeneratedSuffixes 已注册生成器声明的输出文件后缀
func GeneratedSuffixes(registry *Registry) []string {
	return lo.FilterMap(registry.Generators(), func(g Generator, _ int) (string, bool) {
		if s, ok := g.(outputSuffixer); ok && s.OutputSuffix() != "" {
			return s.OutputSuffix(), true
		}
		return "", false
	})
}

// bindParams 把目标上属于该生成器的注解参数解析到参数结构体
func bindParams(gen Generator, targets []*AnnotatedTarget) []error {
	var errs []error
	paramDefs := gen.ParamDefs()
	for _, target := range targets {
		params := gen.NewParams()
		if params == nil {
			return nil // 该生成器不需要参数
		}

		ann, ok := lo.Find(target.Annotations, func(a *Annotation) bool {
			return slices.Contains(gen.Annotations(), a.Name)
		})
		if !ok {
			continue
		}

		if err := ParseAnnotationParams(ann, params, paramDefs); err != nil {
			errs = append(errs, fmt.Errorf("%s: 解析参数失败: %w", target.Target.Name, err))
			continue
		}
		val := reflect.ValueOf(params)
		if val.Kind() != reflect.Ptr {
			errs = append(errs, fmt.Errorf("NewParams() 必须返回指针类型, 得到: %T", params))
			continue
		}
		target.ParsedParams = val.Elem().Interface()
	}
	return errs
}

// executeGenerators 执行生成器，Async 时每个生成器一个 goroutine
func executeGenerators(gens []Generator, dispatch map[string][]*AnnotatedTarget, configs map[string]*PackageConfig, opts *RunOptions) (map[string]*GenerateResult, []error) {
	results := make(map[string]*GenerateResult, len(gens))
	errs := make([]error, len(gens))
	var mu sync.Mutex

	execute := func(i int, gen Generator) {
		targets := dispatch[gen.Name()]
		if opts.Verbose {
			fmt.Printf("执行生成器: %s (开始处理 %d 个目标)\n", gen.Name(), len(targets))
		}

		start := time.Now()
		genResult, err := gen.Generate(&GenerateContext{
			Targets:        targets,
			PackageConfigs: configs,
			DefaultOutput:  opts.Output,
			Verbose:        opts.Verbose,
		})
		if opts.Verbose {
			fmt.Printf("执行生成器: %s (耗时: %v)\n", gen.Name(), time.Since(start))
		}
		if err != nil {
			errs[i] = fmt.Errorf("生成器 %s 执行失败: %w", gen.Name(), err)
			return
		}
		if genResult != nil {
			mu.Lock()
			results[gen.Name()] = genResult
			mu.Unlock()
		}
	}

	if opts.Async {
		var wg sync.WaitGroup
		for i, gen := range gens {
			wg.Add(1)
			go func() {
				defer wg.Done()
				execute(i, gen)
			}()
		}
		wg.Wait()
	} else {
		for i, gen := range gens {
			execute(i, gen)
		}
	}

	return results, lo.Compact(errs)
}

// mergeDefinitionsWithSeparator 合并多个 gg.Generator 定义到一个文件，并添加分隔符
func mergeDefinitionsWithSeparator(definitions []*gg.Generator, genNames []string) (*gg.Generator, error) {
	if len(definitions) == 0 {
		return nil, fmt.Errorf("没有定义需要合并")
	}

	merged := gg.New()
	merged.SetHeader(GeneratedHeader)

	var pkgName string
	for _, def := range definitions {
		if def.PackageName() == "" {
			continue
		}
		if pkgName == "" {
			pkgName = def.PackageName()
		} else if pkgName != def.PackageName() {
			return nil, fmt.Errorf("包名不一致: %s vs %s", pkgName, def.PackageName())
		}
	}
	if pkgName != "" {
		merged.SetPackage(pkgName)
	}

	// 不要手动收集 imports，def.Imports() 只返回路径不包含别名，Merge 会正确处理
	for i, def := range definitions {
		genName := "unknown"
		if i < len(genNames) {
			genName = genNames[i]
		}
		merged.Body().AddLine()
		merged.Body().AddString(fmt.Sprintf("// ================ %s ================", genName))
		merged.Body().AddLine()
		merged.Merge(def)
	}

	return merged, nil
}

// writeGGFile 将 gg 定义写入文件
func writeGGFile(path string, gen *gg.Generator) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	return utils.WriteFormat(path, gen.Bytes())
}

// GetOutputPath 根据注解参数和默认规则计算输出路径
// 优先级：注解参数 > 包级插件配置 > 包级默认配置 > 命令行参数 > 默认文件名
// 模板变量：
//   - $FILE: 源文件名（不含 .go 后缀）
//   - $PACKAGE: 包名
func GetOutputPath(target *Target, ann *Annotation, defaultFileName string, pkgConfig *PackageConfig, pluginName string, cmdOutput string) string {
	output := ann.GetParam("output")
	if output == "" && pkgConfig != nil {
		output = pkgConfig.GetPluginOutput(strings.ToLower(pluginName))
	}
	if output == "" {
		output = cmdOutput
	}
	if output == "" {
		return GetDefaultOutputPath(target, defaultFileName)
	}

	output = replaceTemplateVars(output, target)
	if !strings.HasSuffix(output, ".go") {
		output += ".go"
	}
	if filepath.IsAbs(output) {
		return output
	}
	// 相对于源文件目录
	return filepath.Join(filepath.Dir(target.FilePath), output)
}

// replaceTemplateVars 替换 $FILE、$PACKAGE
func replaceTemplateVars(template string, target *Target) string {
	fileName := strings.TrimSuffix(filepath.Base(target.FilePath), ".go")
	template = strings.ReplaceAll(template, "$FILE", fileName)
	template = strings.ReplaceAll(template, "$PACKAGE", target.PackageName)
	return template
}

// GetDefaultOutputPath 未配置输出时的路径，位于源文件所在目录
func GetDefaultOutputPath(target *Target, defaultFileName string) string {
	if defaultFileName == "" {
		defaultFileName = "generate.go"
	}
	defaultFileName = replaceTemplateVars(defaultFileName, target)
	return filepath.Join(filepath.Dir(target.FilePath), defaultFileName)
}
