package pkgresolver

import (
	"fmt"
	"go/ast"
	"go/build"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

// Resolver 把导入路径解析为真实包名（package 声明），结果带缓存，可并发使用
//
// 查找顺序：
//  1. 标准库：$GOROOT/src
//  2. 当前模块：go.mod 所在目录
//  3. 第三方：$GOMODCACHE，其次 $GOPATH/src
//
// 都找不到时降级为导入路径的最后一段（去掉 /vN 版本后缀）
type Resolver struct {
	root   string // 项目根目录（包含 go.mod）
	module string // 当前模块路径

	mu    sync.RWMutex
	names map[string]string
}

// New 创建解析器，root 为空时只解析标准库和模块缓存
func New(root string) *Resolver {
	r := &Resolver{
		root:  root,
		names: make(map[string]string),
	}
	if root != "" {
		r.module, _ = ModulePath(root)
	}
	return r
}

// PackageName 获取导入路径对应的真实包名
//
//	"fmt"                  → "fmt"
//	"net/http"             → "http"
//	"gopkg.in/yaml.v3"     → "yaml"
//	".../testdata/renamed" → "other" (package 声明与目录名不一致)
func (r *Resolver) PackageName(importPath string) string {
	if importPath == "" {
		return ""
	}
	r.mu.RLock()
	name, ok := r.names[importPath]
	r.mu.RUnlock()
	if ok {
		return name
	}

	name = GuessName(importPath)
	if dir, err := r.dir(importPath); err == nil {
		if n, err := readPackageName(dir); err == nil {
			name = n
		}
	}

	r.mu.Lock()
	r.names[importPath] = name
	r.mu.Unlock()
	return name
}

// Dir 导入路径对应的磁盘目录
func (r *Resolver) Dir(importPath string) (string, error) {
	return r.dir(importPath)
}

func (r *Resolver) dir(importPath string) (string, error) {
	if IsStdLib(importPath) {
		return filepath.Join(build.Default.GOROOT, "src", filepath.FromSlash(importPath)), nil
	}
	if r.module != "" && (importPath == r.module || strings.HasPrefix(importPath, r.module+"/")) {
		rel := strings.TrimPrefix(strings.TrimPrefix(importPath, r.module), "/")
		return filepath.Join(r.root, filepath.FromSlash(rel)), nil
	}
	return findInModCache(importPath)
}

// IsStdLib 标准库路径的第一段不含点
func IsStdLib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return first != "" && !strings.Contains(first, ".")
}

// GuessName 按导入路径猜测包名：取最后一段，跳过 /vN 版本后缀，去掉 .vN 与 go- 前缀
func GuessName(importPath string) string {
	prefix, _, ok := module.SplitPathVersion(importPath)
	if ok && prefix != "" {
		importPath = prefix
	}
	name := path.Base(importPath)
	if i := strings.Index(name, ".v"); i > 0 {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	return strings.NewReplacer("-", "", ".", "").Replace(name)
}

// ModulePath 读取 root/go.mod 的 module 路径
func ModulePath(root string) (string, error) {
	content, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return "", err
	}
	p := modfile.ModulePath(content)
	if p == "" {
		return "", fmt.Errorf("未在 %s/go.mod 中找到模块名称", root)
	}
	return p, nil
}

// FindModuleRoot 从 dir 向上查找包含 go.mod 的目录
func FindModuleRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("未找到 go.mod")
		}
		dir = parent
	}
}

// findInModCache 在模块缓存中查找包目录，模块根可能是导入路径的任意前缀
func findInModCache(importPath string) (string, error) {
	goPath := build.Default.GOPATH
	modCache := os.Getenv("GOMODCACHE")
	if modCache == "" && goPath != "" {
		modCache = filepath.Join(filepath.SplitList(goPath)[0], "pkg", "mod")
	}

	parts := strings.Split(importPath, "/")
	for i := len(parts); i >= 1 && modCache != ""; i-- {
		modPath := strings.Join(parts[:i], "/")
		escaped, err := module.EscapePath(modPath)
		if err != nil {
			continue
		}
		matches, _ := filepath.Glob(filepath.Join(modCache, filepath.FromSlash(escaped)+"@*"))
		if len(matches) == 0 {
			continue
		}
		// 字典序最后一个通常是最新版本
		dir := filepath.Join(matches[len(matches)-1], filepath.FromSlash(strings.Join(parts[i:], "/")))
		if _, err := os.Stat(dir); err == nil {
			return dir, nil
		}
	}

	if goPath != "" {
		dir := filepath.Join(filepath.SplitList(goPath)[0], "src", filepath.FromSlash(importPath))
		if _, err := os.Stat(dir); err == nil {
			return dir, nil
		}
	}
	return "", fmt.Errorf("未找到第三方包 %s", importPath)
}

// DeclaresFunc 目录中的非测试 Go 文件是否声明了名为 name 的顶层函数（不含方法）
func DeclaresFunc(dir, name string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("读取目录失败 %s: %w", dir, err)
	}
	fset := token.NewFileSet()
	for _, e := range entries {
		file := e.Name()
		if e.IsDir() || !strings.HasSuffix(file, ".go") || strings.HasSuffix(file, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, file), nil, parser.SkipObjectResolution)
		if err != nil {
			return false, fmt.Errorf("解析文件 %s 失败: %w", file, err)
		}
		for _, decl := range f.Decls {
			if fn, ok := decl.(*ast.FuncDecl); ok && fn.Recv == nil && fn.Name.Name == name {
				return true, nil
			}
		}
	}
	return false, nil
}

// readPackageName 读取目录中第一个非测试 Go 文件的 package 声明
func readPackageName(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("读取目录失败 %s: %w", dir, err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(token.NewFileSet(), filepath.Join(dir, name), nil, parser.PackageClauseOnly)
		if err != nil {
			return "", fmt.Errorf("解析文件 %s 失败: %w", name, err)
		}
		if f.Name.Name == "documentation" {
			continue
		}
		return f.Name.Name, nil
	}
	return "", fmt.Errorf("目录 %s 中没有找到 Go 源文件", dir)
}
