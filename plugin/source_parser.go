package plugin

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"github.com/donutnomad/gg"
)

// ParseSourceToGG 将 Go 源代码解析并转换为 gg.Generator
// 这使得不使用 gg 库的生成器（如基于 jennifer 的）也能与 gg 框架集成
// 支持提取 imports 并与其他生成器的输出合并
func ParseSourceToGG(source []byte) (*gg.Generator, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", source, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("解析源代码失败: %w", err)
	}

	gen := gg.New()
	gen.SetPackage(file.Name.Name)

	for _, imp := range file.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			return nil, fmt.Errorf("无效的 import %s: %w", imp.Path.Value, err)
		}
		switch {
		case imp.Name == nil:
			gen.P(importPath)
		case imp.Name.Name == "_", imp.Name.Name == ".":
			// 生成代码中不应出现，跳过
		default:
			gen.PAlias(importPath, imp.Name.Name)
		}
	}

	if body := extractBody(fset, file, source); body != "" {
		gen.Body().Append(gg.String("%s", body))
	}

	return gen, nil
}

// extractBody 提取 package 与 import 之后的全部源码
// 直接截取原文，声明之间的注释得以保留
func extractBody(fset *token.FileSet, file *ast.File, source []byte) string {
	end := file.Name.End()
	for _, decl := range file.Decls {
		if d, ok := decl.(*ast.GenDecl); ok && d.Tok == token.IMPORT {
			end = d.End()
		}
	}
	offset := fset.Position(end).Offset
	if offset >= len(source) {
		return ""
	}
	return strings.TrimSpace(string(source[offset:]))
}

// ParseSourceToGGWithHeader 与 ParseSourceToGG 相同，但可以设置文件头注释
func ParseSourceToGGWithHeader(source []byte, headerFormat string, args ...any) (*gg.Generator, error) {
	gen, err := ParseSourceToGG(source)
	if err != nil {
		return nil, err
	}
	if headerFormat != "" {
		gen.SetHeader(headerFormat, args...)
	}
	return gen, nil
}

// MustParseSourceToGG 是 ParseSourceToGG 的 panic 版本
func MustParseSourceToGG(source []byte) *gg.Generator {
	gen, err := ParseSourceToGG(source)
	if err != nil {
		panic(err)
	}
	return gen
}
