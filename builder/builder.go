// Package builder 是生成的 Builder 代码在运行时依赖的辅助包。
//
// 生成代码只会用到这里的少量函数：
//
//	name, ok := builder.Take(&b.name).Get()  // 取出并清空
//	if !ok {
//		return nil, builder.MissingField("Name", "Name")
//	}
//	tags := builder.Snapshot(b.tags)         // 复制，不清空
package builder

import (
	"errors"
	"fmt"
)

// ErrMissingField 所有缺失必填字段错误的哨兵值，可用 errors.Is 判断
var ErrMissingField = errors.New("required field not set")

// MissingFieldError Build 时必填字段未设置
type MissingFieldError struct {
	Field  string // 字段名
	Method string // 用于设置该字段的方法名
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s not set; use method %s to set the %s's value.", e.Field, e.Method, e.Field)
}

// Is 让 errors.Is(err, ErrMissingField) 成立
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// MissingField 构造 *MissingFieldError
func MissingField(field, method string) error {
	return &MissingFieldError{Field: field, Method: method}
}

// Take 返回 *p 的当前值，并把 *p 重置为零值
func Take[T any](p *T) T {
	v := *p
	var zero T
	*p = zero
	return v
}

// Snapshot 返回 s 的副本，结果永远不为 nil
func Snapshot[E any](s []E) []E {
	return append(make([]E, 0, len(s)), s...)
}
