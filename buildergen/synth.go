package buildergen

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// Declarations 一个记录类型生成的全部声明
type Declarations struct {
	Record    string    // 记录类型名
	Builder   string    // Builder 类型名
	Factory   string    // 工厂函数名
	Slots     []Slot    // Builder 存储字段
	Methods   []Method  // 设置方法
	Finalizer Finalizer // Build 方法
}

// Options 生成选项，零值字段使用默认命名
type Options struct {
	BuilderName string // 默认 <Record>Builder
	FactoryName string // 默认 New<Builder>
	BuildName   string // 默认 Build
}

// Option 修改 Options
type Option func(*Options)

// WithBuilderName 指定 Builder 类型名
func WithBuilderName(name string) Option {
	return func(o *Options) { o.BuilderName = name }
}

// WithFactoryName 指定工厂函数名
func WithFactoryName(name string) Option {
	return func(o *Options) { o.FactoryName = name }
}

// WithBuildName 指定 Build 方法名
func WithBuildName(name string) Option {
	return func(o *Options) { o.BuildName = name }
}

func (o *Options) applyDefaults(record string) {
	if o.BuilderName == "" {
		o.BuilderName = record + "Builder"
	}
	if o.FactoryName == "" {
		o.FactoryName = "New" + o.BuilderName
	}
	if o.BuildName == "" {
		o.BuildName = "Build"
	}
}

// Synthesize 为记录生成 Builder 声明。任何字段出错都会使整个记录失败，不返回部分结果。
func Synthesize(rec RecordDescription, opts ...Option) (*Declarations, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	o.applyDefaults(rec.Name)

	if err := checkRecordShape(rec); err != nil {
		return nil, err
	}

	cls := make([]Classification, len(rec.Fields))
	for i, f := range rec.Fields {
		c, err := Classify(f)
		if err != nil {
			return nil, classifyError(rec.Name, f.Name, err)
		}
		cls[i] = c
	}

	slots := synthesizeShape(rec.Fields, cls, o.BuildName)
	methods := synthesizeMethods(rec.Name, slots, cls)
	decls := &Declarations{
		Record:    rec.Name,
		Builder:   o.BuilderName,
		Factory:   o.FactoryName,
		Slots:     slots,
		Methods:   methods,
		Finalizer: synthesizeFinalizer(o.BuildName, slots, methods),
	}

	if err := checkCollisions(decls); err != nil {
		return nil, err
	}
	return decls, nil
}

func checkRecordShape(rec RecordDescription) error {
	if rec.TypeParams > 0 {
		return newGenError(ErrUnsupportedRecordShape, rec.Name, "", "generic record types are not supported")
	}
	if rec.Shape != ShapeStruct {
		return newGenError(ErrUnsupportedRecordShape, rec.Name, "", "expected a struct with named fields, got %s", rec.Shape)
	}
	if len(rec.Fields) == 0 {
		return newGenError(ErrUnsupportedRecordShape, rec.Name, "", "struct has no fields")
	}
	return nil
}

func classifyError(record, field string, err error) error {
	var de *directiveError
	if errors.As(err, &de) {
		return newGenError(ErrMalformedAnnotation, record, field, "%s", de.detail)
	}
	var tm *typeMismatchError
	if errors.As(err, &tm) {
		return newGenError(ErrAnnotationTypeMismatch, record, field, "%s", tm.Error())
	}
	return fmt.Errorf("%s.%s: %w", record, field, err)
}

// checkCollisions 方法名之间、方法名与 Build 方法名之间不能重复。
// 存储字段名在 synthesizeShape 中已避开所有方法名。
func checkCollisions(d *Declarations) error {
	type owner struct {
		what  string
		field string
	}
	seen := make(map[string]owner)
	claim := func(name string, o owner) error {
		if prev, ok := seen[name]; ok {
			prevDesc := prev.what
			if prev.field != "" {
				prevDesc += fmt.Sprintf(" of field %q", prev.field)
			}
			return newGenError(ErrNameCollision, d.Record, o.field, "%s %q collides with %s", o.what, name, prevDesc)
		}
		seen[name] = o
		return nil
	}

	if err := claim(d.Finalizer.Name, owner{what: "build method"}); err != nil {
		return err
	}
	for _, m := range d.Methods {
		if err := claim(m.Name, owner{what: "method", field: m.Field}); err != nil {
			return err
		}
	}

	names := []string{d.Record, d.Builder, d.Factory}
	if dup := lo.FindDuplicates(names); len(dup) > 0 {
		return newGenError(ErrNameCollision, d.Record, "", "type/factory name %q is used twice", dup[0])
	}
	return nil
}

// CheckPackageCollisions 同一输出包中多个记录的 Builder/工厂名不能重复
func CheckPackageCollisions(decls []*Declarations) error {
	owners := make(map[string]string)
	for _, d := range decls {
		owners[d.Record] = d.Record
	}
	for _, d := range decls {
		for _, name := range []string{d.Builder, d.Factory} {
			if prev, ok := owners[name]; ok && prev != d.Record {
				return newGenError(ErrNameCollision, d.Record, "", "%q is already generated for %s", name, prev)
			}
			owners[name] = d.Record
		}
	}
	return nil
}
