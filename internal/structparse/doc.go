// Package structparse 解析 Go 源文件中的类型声明。
//
// 与 go/types 不同，本包只做语法层面的解析，不需要加载依赖包：
//
//	info, err := structparse.ParseStruct("path/to/file.go", "Command")
//	for _, f := range info.Fields {
//	    fmt.Println(f.Name, f.TypeText)
//	}
//
// 字段类型保留为 ast.Expr，导入信息按源码中的限定符索引，
// 真实包名通过 internal/pkgresolver 读取 package 声明得到。
package structparse
