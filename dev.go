package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/donutnomad/buildgen/plugin"
	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"golang.org/x/tools/imports"
)

// defaultDebounce 同一个包连续保存时只触发一次生成
const defaultDebounce = 2 * time.Second

// DevOptions dev 命令选项
type DevOptions struct {
	Patterns []string      // 监听的路径模式
	Verbose  bool          // 详细输出
	Output   string        // 默认输出路径
	Async    bool          // 异步执行
	Debounce time.Duration // 防抖动时间
}

// devRunner 监听文件变动，按包目录防抖后重新生成
type devRunner struct {
	opts     *DevOptions
	registry *plugin.Registry
	scanner  *plugin.Scanner
	skip     []string // 不触发生成的文件后缀
	generate func(pkgDir string)

	mu          sync.Mutex
	pendingDirs map[string]*time.Timer // key: 包目录
}

func runDev(patterns []string) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	opts := &DevOptions{
		Patterns: patterns,
		Verbose:  *verbose,
		Output:   *output,
		Async:    *async,
		Debounce: defaultDebounce,
	}
	if err := dev(opts); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func dev(opts *DevOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听器失败: %w", err)
	}
	defer watcher.Close()

	dirs, err := collectWatchDirs(opts.Patterns)
	if err != nil {
		return fmt.Errorf("收集监听目录失败: %w", err)
	}
	if len(dirs) == 0 {
		return fmt.Errorf("没有找到需要监听的目录")
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("添加监听目录失败 %s: %w", dir, err)
		}
		if opts.Verbose {
			fmt.Printf("监听目录: %s\n", dir)
		}
	}

	runner := newDevRunner(plugin.Global(), opts)
	runner.generate = func(pkgDir string) {
		if ctx.Err() == nil {
			runner.runGenerate(ctx, pkgDir)
		}
	}
	defer runner.stopAll()

	fmt.Printf("开发模式已启动，监听 %d 个目录\n", len(dirs))
	fmt.Println("按 Ctrl+C 退出")
	fmt.Println()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\n正在退出...")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			runner.handleEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if opts.Verbose {
				fmt.Printf("监听错误: %v\n", err)
			}
		}
	}
}

func newDevRunner(registry *plugin.Registry, opts *DevOptions) *devRunner {
	return &devRunner{
		opts:        opts,
		registry:    registry,
		scanner:     plugin.NewScanner(plugin.WithAnnotationFilter(registry.Annotations()...)),
		skip:        append([]string{"_test.go"}, plugin.GeneratedSuffixes(registry)...),
		pendingDirs: make(map[string]*time.Timer),
	}
}

// handleEvent 带注解且语法正确的 .go 文件变动才会触发生成
func (r *devRunner) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	filePath := event.Name
	if !strings.HasSuffix(filePath, ".go") || r.isGeneratedFile(filePath) {
		return
	}

	if r.opts.Verbose {
		fmt.Printf("检测到文件变化: %s\n", filePath)
	}

	hasAnnotation, err := r.scanner.QuickMatchFile(filePath)
	if err != nil || !hasAnnotation {
		if r.opts.Verbose {
			fmt.Printf("跳过文件（无注解）: %s\n", filePath)
		}
		return
	}

	// 保存到一半的文件不触发生成
	if err := checkSyntax(filePath); err != nil {
		fmt.Printf("语法错误 %s: %v\n", filePath, err)
		return
	}

	r.schedule(filepath.Dir(filePath))
}

// schedule 防抖：Debounce 时间内同一目录的多次变动只生成一次
func (r *devRunner) schedule(pkgDir string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timer, ok := r.pendingDirs[pkgDir]; ok {
		timer.Stop()
	}
	r.pendingDirs[pkgDir] = time.AfterFunc(r.opts.Debounce, func() {
		r.mu.Lock()
		delete(r.pendingDirs, pkgDir)
		r.mu.Unlock()

		r.generate(pkgDir)
	})
}

func (r *devRunner) stopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, timer := range r.pendingDirs {
		timer.Stop()
	}
}

func (r *devRunner) runGenerate(ctx context.Context, pkgDir string) {
	if r.opts.Verbose {
		fmt.Printf("触发代码生成: %s\n", pkgDir)
	}

	stats, err := plugin.RunWithOptionsAndStats(ctx, &plugin.RunOptions{
		Registry: r.registry,
		Patterns: []string{pkgDir}, // 只生成变动的包
		Verbose:  r.opts.Verbose,
		Output:   r.opts.Output,
		Async:    r.opts.Async,
	})
	if err != nil {
		fmt.Printf("生成失败: %v\n", err)
		return
	}

	if stats != nil && stats.FileCount > 0 {
		fmt.Printf("生成完成: %d 个文件 (耗时: %v)\n", stats.FileCount, stats.TotalDuration)
	} else if r.opts.Verbose {
		fmt.Println("生成完成: 无文件生成")
	}
}

// isGeneratedFile 生成的文件和测试文件不触发生成
func (r *devRunner) isGeneratedFile(filePath string) bool {
	return lo.SomeBy(r.skip, func(suffix string) bool {
		return strings.HasSuffix(filePath, suffix)
	})
}

func checkSyntax(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	_, err = imports.Process(filePath, content, &imports.Options{
		AllErrors:  true,
		Comments:   true,
		FormatOnly: true,
	})
	return err
}

// collectWatchDirs 收集需要监听的目录，fsnotify 不支持递归监听
func collectWatchDirs(patterns []string) ([]string, error) {
	var dirs []string
	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		absDir, err := filepath.Abs(strings.TrimSuffix(pattern, "/..."))
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(absDir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			continue
		}
		if !recursive {
			dirs = append(dirs, absDir)
			continue
		}

		err = filepath.WalkDir(absDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return err
			}
			name := d.Name()
			if path != absDir && (strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			dirs = append(dirs, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return lo.Uniq(dirs), nil
}
