package structparse

import (
	"sync"

	"github.com/donutnomad/buildgen/internal/pkgresolver"
)

// PackageResolver 包名解析器接口
type PackageResolver interface {
	PackageName(importPath string) string
}

// ParseContext 解析上下文，可在多个文件间共享包名缓存
type ParseContext struct {
	resolver     PackageResolver
	projectRoot  string
	resolverOnce sync.Once
}

// NewParseContext 创建解析上下文（从工作目录向上查找 go.mod）
func NewParseContext() *ParseContext {
	root, _ := pkgresolver.FindModuleRoot(".")
	return &ParseContext{projectRoot: root}
}

// NewParseContextWithRoot 创建解析上下文（指定项目根目录）
func NewParseContextWithRoot(projectRoot string) *ParseContext {
	return &ParseContext{projectRoot: projectRoot}
}

// NewParseContextWithResolver 创建解析上下文（指定PackageResolver，用于测试）
func NewParseContextWithResolver(resolver PackageResolver) *ParseContext {
	return &ParseContext{resolver: resolver}
}

// GetResolver 获取包解析器（延迟初始化）
func (c *ParseContext) GetResolver() PackageResolver {
	c.resolverOnce.Do(func() {
		if c.resolver == nil {
			c.resolver = pkgresolver.New(c.projectRoot)
		}
	})
	return c.resolver
}
