package buildergen

import (
	"go/scanner"
	"go/token"
	"strconv"
	"strings"
)

// directiveKey each = "Method" 中的键名
const directiveKey = "each"

// Directive 解析后的字段指令。目前只有一种：按元素累加
type Directive struct {
	Each string // 累加方法名，为空表示没有指令
}

// HasEach 是否为 accumulate-as 指令
func (d Directive) HasEach() bool {
	return d.Each != ""
}

// directiveError 带字段上下文之前的解析错误
type directiveError struct {
	detail string
}

func (e *directiveError) Error() string { return e.detail }

// Interpret 解析字段上的注解。没有注解时返回零值 Directive。
// 唯一合法的形式是 each = "Ident"，键可以带路径前缀（如 builder.each）。
func Interpret(annotations []Annotation) (Directive, error) {
	switch len(annotations) {
	case 0:
		return Directive{}, nil
	case 1:
	default:
		return Directive{}, &directiveError{detail: "multiple @Builder annotations on one field"}
	}

	ann := annotations[0]
	toks := lex(ann.Args)

	// PATH = STRING EOF
	i := 0
	var path []string
	for {
		if i >= len(toks) || toks[i].tok != token.IDENT {
			return Directive{}, &directiveError{detail: "expected directive key in " + quoteRaw(ann)}
		}
		path = append(path, toks[i].lit)
		i++
		if i < len(toks) && toks[i].tok == token.PERIOD {
			i++
			continue
		}
		break
	}
	if key := path[len(path)-1]; key != directiveKey {
		return Directive{}, &directiveError{detail: "unknown directive key " + strconv.Quote(strings.Join(path, ".")) + ", only " + directiveKey + " is supported"}
	}
	if i >= len(toks) || toks[i].tok != token.ASSIGN {
		return Directive{}, &directiveError{detail: "expected '=' after " + directiveKey + " in " + quoteRaw(ann)}
	}
	i++
	if i >= len(toks) || toks[i].tok != token.STRING {
		return Directive{}, &directiveError{detail: directiveKey + " value must be a string literal in " + quoteRaw(ann)}
	}
	value, err := strconv.Unquote(toks[i].lit)
	if err != nil {
		return Directive{}, &directiveError{detail: "invalid string literal " + toks[i].lit}
	}
	i++
	if i < len(toks) {
		if toks[i].tok == token.COMMA {
			return Directive{}, &directiveError{detail: "only one directive is allowed per field"}
		}
		return Directive{}, &directiveError{detail: "unexpected " + toks[i].String() + " in " + quoteRaw(ann)}
	}
	if !token.IsIdentifier(value) {
		return Directive{}, &directiveError{detail: strconv.Quote(value) + " is not a valid method name"}
	}
	return Directive{Each: value}, nil
}

type lexToken struct {
	tok token.Token
	lit string
}

func (t lexToken) String() string {
	if t.lit != "" {
		return strconv.Quote(t.lit)
	}
	return strconv.Quote(t.tok.String())
}

// lex 用 Go 自身的词法分析器切分注解参数。
// 扫描器在行尾会插入自动分号，这里丢弃；遇到非法字符时追加 ILLEGAL。
func lex(src string) []lexToken {
	var s scanner.Scanner
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))
	illegal := false
	s.Init(file, []byte(src), func(token.Position, string) { illegal = true }, 0)

	var toks []lexToken
	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}
		toks = append(toks, lexToken{tok: tok, lit: lit})
	}
	if illegal {
		toks = append(toks, lexToken{tok: token.ILLEGAL})
	}
	return toks
}

func quoteRaw(ann Annotation) string {
	if ann.Raw != "" {
		return strconv.Quote(ann.Raw)
	}
	return strconv.Quote(ann.Args)
}
