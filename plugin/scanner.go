package plugin

import (
	"bufio"
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync"
)

// Scanner 两阶段并行注解扫描器
// 第一阶段：快速文本匹配，找出可能包含注解的文件
// 第二阶段：对匹配的文件进行 AST 解析
type Scanner struct {
	workers int
	verbose bool

	// 注解过滤器（可选）
	annotationFilter []string

	// 跳过的生成文件后缀
	skipSuffixes []string
}

// ScannerOption 扫描器选项
type ScannerOption func(*Scanner)

func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithScannerVerbose(v bool) ScannerOption {
	return func(s *Scanner) {
		s.verbose = v
	}
}

func WithAnnotationFilter(annotations ...string) ScannerOption {
	return func(s *Scanner) {
		s.annotationFilter = annotations
	}
}

// WithSkipSuffixes 追加需要跳过的文件后缀，如 _builder.go
func WithSkipSuffixes(suffixes ...string) ScannerOption {
	return func(s *Scanner) {
		s.skipSuffixes = append(s.skipSuffixes, suffixes...)
	}
}

func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		workers:      runtime.NumCPU(),
		skipSuffixes: []string{"_test.go"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// quickMatchRegex 快速匹配注解的正则
var quickMatchRegex = regexp.MustCompile(`@(\w+)`)

// directivePrefix 包级配置指令
const directivePrefix = "go:buildgen:"

// Scan 扫描指定路径
// 支持: ./... ./pkg/... ./pkg /abs/path/... file.go
func (s *Scanner) Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	allFiles, err := s.collectFiles(patterns)
	if err != nil {
		return nil, err
	}

	// ========== 第一阶段：快速匹配 ==========
	matched := parallel(ctx, s.workers, allFiles, func(file string) (string, bool) {
		ok, err := s.QuickMatchFile(file)
		return file, ok && err == nil
	})
	if s.verbose {
		fmt.Printf("[scan] %d 个文件，%d 个可能包含注解\n", len(allFiles), len(matched))
	}

	// ========== 第二阶段：AST 解析 ==========
	parsed := parallel(ctx, s.workers, matched, func(file string) (fileResult, bool) {
		r := s.parseFile(file)
		if r.err != nil && s.verbose {
			fmt.Printf("[scan] 跳过 %s: %v\n", file, r.err)
		}
		return r, r.err == nil
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &ScanResult{PackageConfigs: make(map[string]*PackageConfig)}
	for _, r := range parsed {
		result.Targets = append(result.Targets, r.targets...)
		if r.pkgConfig != nil {
			mergePackageConfig(result.PackageConfigs, r.pkgConfig)
		}
	}

	// 并行收集的顺序不确定，按文件和位置排序
	slices.SortFunc(result.Targets, func(a, b *AnnotatedTarget) int {
		if c := strings.Compare(a.Target.FilePath, b.Target.FilePath); c != 0 {
			return c
		}
		return int(a.Target.Position - b.Target.Position)
	})
	return result, nil
}

// parallel 用固定数量的 worker 处理输入，保留 keep 为 true 的结果
func parallel[In, Out any](ctx context.Context, workers int, inputs []In, fn func(In) (Out, bool)) []Out {
	type item struct {
		out  Out
		keep bool
	}
	inCh := make(chan In)
	outCh := make(chan item, len(inputs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for in := range inCh {
				out, keep := fn(in)
				outCh <- item{out: out, keep: keep}
			}
		}()
	}

	go func() {
		defer close(inCh)
		for _, in := range inputs {
			select {
			case <-ctx.Done():
				return
			case inCh <- in:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	var result []Out
	for it := range outCh {
		if it.keep {
			result = append(result, it.out)
		}
	}
	return result
}

// QuickMatchFile 快速检查文件是否包含注解或 go:buildgen: 配置
// 用于 dev 模式判断文件是否需要触发代码生成
func (s *Scanner) QuickMatchFile(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		// 注解可能写在字段的行尾注释里，不能只看以 // 开头的行
		line := scanner.Text()
		idx := strings.Index(line, "//")
		if idx < 0 {
			idx = strings.Index(line, "/*")
		}
		if idx < 0 {
			continue
		}
		comment := line[idx:]

		if strings.Contains(comment, directivePrefix) {
			return true, nil
		}
		for _, match := range quickMatchRegex.FindAllStringSubmatch(comment, -1) {
			if len(s.annotationFilter) == 0 || slices.Contains(s.annotationFilter, match[1]) {
				return true, nil
			}
		}
	}

	return false, scanner.Err()
}

// fileResult 单个文件的解析结果
type fileResult struct {
	targets   []*AnnotatedTarget
	pkgConfig *PackageConfig
	err       error
}

// parseFile AST 解析单个文件
func (s *Scanner) parseFile(filePath string) (result fileResult) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
	if err != nil {
		result.err = err
		return
	}
	if ast.IsGenerated(file) {
		return
	}

	result.pkgConfig = parsePackageConfig(file, filePath)

	for _, decl := range file.Decls {
		if d, ok := decl.(*ast.GenDecl); ok && d.Tok == token.TYPE {
			result.targets = append(result.targets, s.parseTypeDecl(filePath, file.Name.Name, d)...)
		}
	}
	return
}

// parseTypeDecl 解析类型声明
// 单个声明的注解写在 type 关键字上方，分组声明 type (...) 的注解写在各自的类型上方
func (s *Scanner) parseTypeDecl(filePath, packageName string, decl *ast.GenDecl) []*AnnotatedTarget {
	var targets []*AnnotatedTarget

	for _, spec := range decl.Specs {
		typeSpec := spec.(*ast.TypeSpec)

		doc := typeSpec.Doc
		if doc == nil && len(decl.Specs) == 1 {
			doc = decl.Doc
		}
		if doc == nil {
			continue
		}

		annotations := ParseAnnotations(doc.Text())
		if len(s.annotationFilter) > 0 {
			annotations = FilterByNames(annotations, s.annotationFilter...)
		}
		if len(annotations) == 0 {
			continue
		}

		kind := TargetType
		if _, ok := typeSpec.Type.(*ast.StructType); ok && !typeSpec.Assign.IsValid() {
			kind = TargetStruct
		}

		targets = append(targets, &AnnotatedTarget{
			Target: &Target{
				Kind:        kind,
				Name:        typeSpec.Name.Name,
				PackageName: packageName,
				FilePath:    filePath,
				Position:    typeSpec.Pos(),
				Node:        typeSpec,
			},
			Annotations: annotations,
		})
	}

	return targets
}

// collectFiles 收集所有需要扫描的文件
func (s *Scanner) collectFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		if recursive {
			pattern = strings.TrimSuffix(pattern, "/...")
		}

		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if strings.HasSuffix(absPath, ".go") {
				add(absPath)
			}
			continue
		}

		err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != absPath && (!recursive || strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, ".go") && !s.skipped(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

func (s *Scanner) skipped(path string) bool {
	for _, suffix := range s.skipSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// Scan 使用默认扫描器扫描
func Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	return NewScanner().Scan(ctx, patterns...)
}

// directiveRegex 匹配 go:buildgen: 指令
// 支持两种格式：//go:buildgen: 和 // go:buildgen:
var directiveRegex = regexp.MustCompile(`go:buildgen:\s*(.*)`)

// parsePackageConfig 解析包级 go:buildgen: 配置
// 支持格式:
//
//	//go:buildgen: -output `$FILE_builder`
//	// go:buildgen: plugin:buildergen -output `builders` -output `all_gen`
func parsePackageConfig(file *ast.File, filePath string) *PackageConfig {
	var lines []string
	for _, cg := range file.Comments {
		for _, c := range cg.List {
			text := strings.TrimPrefix(c.Text, "//")
			text = strings.TrimPrefix(text, "/*")
			text = strings.TrimSuffix(text, "*/")
			text = strings.TrimSpace(text)
			if matches := directiveRegex.FindStringSubmatch(text); len(matches) > 1 {
				lines = append(lines, matches[1])
			}
		}
	}

	switch len(lines) {
	case 0:
		return nil
	case 1:
		return parseDirectiveLine(lines[0], filepath.Dir(filePath))
	default:
		fmt.Printf("警告: 文件 %s 定义了多个 %s 指令，将被忽略\n", filePath, directivePrefix)
		return nil
	}
}

// parseDirectiveLine 解析单行 go:buildgen: 配置
// 格式:
//
//	-output `xxx`                                 // 默认输出
//	plugin:buildergen -output `xxx`               // 插件特定输出
func parseDirectiveLine(line string, pkgDir string) *PackageConfig {
	config := &PackageConfig{
		PackageDir:    pkgDir,
		PluginOutputs: make(map[string]string),
	}

	parts := splitDirectiveArgs(strings.TrimSpace(line))
	var currentPlugin string
	for i := 0; i < len(parts); i++ {
		part := parts[i]
		switch {
		case strings.HasPrefix(part, "plugin:"):
			currentPlugin = strings.ToLower(strings.TrimPrefix(part, "plugin:"))
		case part == "-output" && i+1 < len(parts):
			i++
			output := trimQuotes(parts[i])
			if currentPlugin == "" {
				config.DefaultOutput = output
			} else {
				config.PluginOutputs[currentPlugin] = output
			}
		}
	}

	if config.DefaultOutput == "" && len(config.PluginOutputs) == 0 {
		return nil
	}
	return config
}

// mergePackageConfig 同一个包的多个文件都可以写指令，后发现的覆盖先发现的
func mergePackageConfig(configs map[string]*PackageConfig, cfg *PackageConfig) {
	existing, ok := configs[cfg.PackageDir]
	if !ok {
		configs[cfg.PackageDir] = cfg
		return
	}
	if cfg.DefaultOutput != "" {
		if existing.DefaultOutput != "" && existing.DefaultOutput != cfg.DefaultOutput {
			fmt.Printf("警告: 包 %s 中存在多个不同的 %s 默认输出配置，使用后发现的配置\n", cfg.PackageDir, directivePrefix)
		}
		existing.DefaultOutput = cfg.DefaultOutput
	}
	for k, v := range cfg.PluginOutputs {
		if old, ok := existing.PluginOutputs[k]; ok && old != v {
			fmt.Printf("警告: 包 %s 中插件 %s 存在多个不同的输出配置，使用后发现的配置\n", cfg.PackageDir, k)
		}
		existing.PluginOutputs[k] = v
	}
}

// splitDirectiveArgs 按空白分割参数，引号内的空格保留
func splitDirectiveArgs(line string) []string {
	var parts []string
	var current strings.Builder
	var quote byte

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote == 0 && (c == '`' || c == '"' || c == '\''):
			quote = c
			current.WriteByte(c)
		case quote != 0 && c == quote:
			quote = 0
			current.WriteByte(c)
		case quote == 0 && (c == ' ' || c == '\t'):
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// trimQuotes 去除引号
func trimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '`' || first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
