package buildergen

import (
	"errors"
	"fmt"
)

// 生成期错误类别，均为致命错误
var (
	ErrUnsupportedRecordShape = errors.New("unsupported record shape")
	ErrMalformedAnnotation    = errors.New("malformed annotation")
	ErrAnnotationTypeMismatch = errors.New("annotation type mismatch")
	ErrNameCollision          = errors.New("name collision")
	ErrMissingSomeFunc        = errors.New("option package has no Some function")
)

// GenError 生成失败的详细信息
type GenError struct {
	Kind   error  // 上面的哨兵之一
	Record string // 记录类型名
	Field  string // 出错字段，记录级错误为空
	Detail string
}

func (e *GenError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v: %s", e.Record, e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s.%s: %v: %s", e.Record, e.Field, e.Kind, e.Detail)
}

func (e *GenError) Unwrap() error {
	return e.Kind
}

func newGenError(kind error, record, field, format string, args ...any) *GenError {
	return &GenError{
		Kind:   kind,
		Record: record,
		Field:  field,
		Detail: fmt.Sprintf(format, args...),
	}
}
