package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/donutnomad/buildgen/buildergen"
	"github.com/donutnomad/buildgen/plugin"
	"github.com/samber/lo"
)

func init() {
	plugin.MustRegister(buildergen.NewBuilderGenerator())
}

var (
	verbose  = flag.Bool("v", false, "详细输出")
	help     = flag.Bool("h", false, "显示帮助信息")
	output   = flag.String("output", "", "默认输出路径（支持模板变量 $FILE, $PACKAGE），为空时使用生成器默认值")
	noOutput = flag.Bool("no-output", false, "只生成不写入文件")
	async    = flag.Bool("async", true, "异步执行生成器")
	check    = flag.Bool("check", false, "检查生成文件是否最新，不写入；过期时以非零状态退出")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		runGen([]string{"./..."})
		return
	}

	switch args[0] {
	case "gen":
		runGen(args[1:])
	case "dev":
		runDev(args[1:])
	case "plan":
		runPlan(args[1:])
	default:
		// 不是子命令，当作路径参数处理
		runGen(args)
	}
}

func runGen(patterns []string) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	registry := plugin.Global()
	if *verbose {
		printGenerators(registry)
	}

	stats, err := plugin.RunWithOptionsAndStats(context.Background(), &plugin.RunOptions{
		Registry: registry,
		Patterns: patterns,
		Verbose:  *verbose,
		Output:   *output,
		Async:    *async,
		NoOutput: *noOutput,
		Check:    *check,
	})
	if err != nil {
		if errors.Is(err, plugin.ErrStale) {
			fmt.Fprintf(os.Stderr, "%v，请运行 buildgen 重新生成\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		}
		os.Exit(1)
	}

	if stats != nil && (stats.FileCount > 0 || *verbose) {
		fmt.Printf("\n统计: 扫描 %d 个目标, 生成 %d 个文件\n", stats.TargetCount, stats.FileCount)
		fmt.Printf("耗时: 扫描 %v, 生成 %v, 总计 %v\n", stats.ScanDuration, stats.GenerateDuration, stats.TotalDuration)
	}
}

// runPlan 打印某个类型的生成计划，不写文件
func runPlan(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "用法: buildgen plan <file.go> <Type>")
		os.Exit(2)
	}

	decls, err := buildergen.Plan(args[0], args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		spew.Dump(decls)
		return
	}
	data, err := decls.JSON()
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func printGenerators(registry *plugin.Registry) {
	fmt.Printf("已注册 %d 个生成器:\n", len(registry.Generators()))
	for _, gen := range registry.Generators() {
		anns := lo.Map(gen.Annotations(), func(item string, _ int) string {
			return "@" + item
		})
		fmt.Printf("  - %s (%s)\n", gen.Name(), strings.Join(anns, ","))
	}
	fmt.Println()
}

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, `buildgen - 为结构体生成 Builder

用法:
  buildgen [选项] [路径...]
  buildgen gen [选项] [路径...]
  buildgen dev [选项] [路径...]
  buildgen plan <file.go> <Type>

命令:
  gen     执行代码生成（默认）
  dev     启动开发模式，监听文件变动自动生成
  plan    以 JSON 打印单个类型的生成计划（-v 时输出完整结构）

路径:
  支持 Go 包路径模式，如:
    ./...          递归扫描当前目录及子目录（默认）
    ./pkg/...      递归扫描指定目录
    ./models       只扫描 models 目录

选项:
`)
	flag.PrintDefaults()

	registry := plugin.Global()
	if len(registry.Generators()) > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "\n支持的注解:\n")
		_, _ = fmt.Fprint(os.Stderr, plugin.FormatHelpText(registry))
	}

	_, _ = fmt.Fprintf(os.Stderr, `字段注解:
  // @Builder(each = "AddEnv")   切片字段生成逐个追加的方法，不生成整体 setter

可选字段:
  X.Option[T] / X.Optional[T] 视为可选字段，setter 调用同一包中的 Some(v)，
  该包必须声明 Some 函数（github.com/samber/mo 已提供）

包级配置:
  // go:buildgen: -output `+"`$PACKAGE_builders`"+`
  // go:buildgen: plugin:buildergen -output `+"`builders`"+`
  输出文件必须位于源文件所在目录

模板变量:
  $FILE     - 源文件名（不含 .go 后缀）
  $PACKAGE  - 包名

示例:
  buildgen                                  扫描当前目录（默认 ./...）
  buildgen -v ./models/...                  详细模式扫描 models 目录
  buildgen -output $FILE_gen ./...          指定输出文件名
  buildgen -check ./...                     CI 中检查生成文件是否最新
  buildgen dev ./...                        开发模式，监听文件变动
  buildgen plan ./cmd.go Command            查看 Command 的生成计划
`)
}
