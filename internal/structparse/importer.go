package structparse

import (
	"go/ast"
	"strconv"

	"github.com/donutnomad/buildgen/internal/pkgresolver"
)

// extractImports 提取文件中的导入信息，key 为源码中的限定符
func (c *ParseContext) extractImports(file *ast.File) map[string]*ImportInfo {
	imports := make(map[string]*ImportInfo)
	resolver := c.GetResolver()

	for _, imp := range file.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}

		var alias string
		if imp.Name != nil {
			alias = imp.Name.Name
			if alias == "_" || alias == "." {
				continue
			}
		}

		packageName := resolver.PackageName(importPath)
		if packageName == "" {
			packageName = pkgresolver.GuessName(importPath)
		}

		info := &ImportInfo{
			Alias:       alias,
			PackageName: packageName,
			ImportPath:  importPath,
		}
		imports[info.Qualifier()] = info
	}

	return imports
}
