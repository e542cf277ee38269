package utils

import (
	"go/token"
	"unicode"
)

// LowerCamelCase 转换为小驼峰，首部的缩略词整体转小写
//
//	Name       -> name
//	ID         -> id
//	HTTPServer -> httpServer
//	SHA256Hash -> sha256Hash
func LowerCamelCase(s string) string {
	r := []rune(s)
	n := 0
	for n < len(r) && unicode.IsUpper(r[n]) {
		n++
	}
	switch {
	case n == 0:
		return s
	case n == len(r):
		// 全大写
	case n > 1 && unicode.IsLower(r[n]):
		// 最后一个大写字母属于下一个单词
		n--
	}
	for i := 0; i < n; i++ {
		r[i] = unicode.ToLower(r[i])
	}
	return string(r)
}

// UpperFirst 首字母大写
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// SafeIdent 避开 Go 关键字，冲突时追加 Val 后缀
func SafeIdent(s string) string {
	if token.IsKeyword(s) {
		return s + "Val"
	}
	return s
}
