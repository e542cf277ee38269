package plugin

import (
	"fmt"
	"reflect"

	"github.com/spf13/cast"
)

// ParseParamsFromStruct 从结构体的tag解析参数定义
// 支持的tag: name, required, default, description
//
// 示例:
//
//	type Params struct {
//	    Name string `param:"name=name,required=false,default=,description=Builder 类型名"`
//	}
//
//	params := plugin.ParseParamsFromStruct(Params{})
func ParseParamsFromStruct(v any) []ParamDef {
	typ := reflect.TypeOf(v)
	if typ == nil {
		return nil
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil
	}

	var params []ParamDef
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("param")
		if tag == "" {
			continue
		}
		if def := parseParamTag(tag); def.Name != "" {
			params = append(params, def)
		}
	}
	return params
}

// parseParamTag 解析 param tag 字符串
// 格式: name=xxx,required=true,default=xxx,description=xxx
func parseParamTag(tag string) ParamDef {
	var param ParamDef
	for key, value := range splitTag(tag) {
		switch key {
		case "name":
			param.Name = value
		case "required":
			param.Required = cast.ToBool(value)
		case "default":
			param.Default = value
		case "description":
			param.Description = value
		}
	}
	return param
}

// splitTag 分割tag字符串为键值对，\ 转义下一个字符
// 格式: key1=value1,key2=value2,...
func splitTag(tag string) map[string]string {
	result := make(map[string]string)

	var key, value []byte
	inKey := true
	escaped := false

	flush := func() {
		if len(key) > 0 {
			result[string(key)] = string(value)
		}
		key, value, inKey = nil, nil, true
	}

	for i := 0; i < len(tag); i++ {
		ch := tag[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
			continue
		case ch == '=' && inKey:
			inKey = false
			continue
		case ch == ',':
			flush()
			continue
		}
		if inKey {
			key = append(key, ch)
		} else {
			value = append(value, ch)
		}
	}
	flush()

	return result
}

// ParseAnnotationParams 将注解的参数解析到目标结构体中
// annotation: 注解对象，包含参数键值对
// target: 目标结构体（必须是指针）
// paramDefs: 参数定义列表，用于应用默认值和必填校验
func ParseAnnotationParams(annotation *Annotation, target any, paramDefs []ParamDef) error {
	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return nil
	}
	val = val.Elem()
	typ := val.Type()
	if typ.Kind() != reflect.Struct {
		return nil
	}

	defMap := make(map[string]ParamDef, len(paramDefs))
	for _, def := range paramDefs {
		defMap[def.Name] = def
	}

	for i := 0; i < typ.NumField(); i++ {
		fieldVal := val.Field(i)
		if !fieldVal.CanSet() {
			continue
		}
		tag := typ.Field(i).Tag.Get("param")
		if tag == "" {
			continue
		}
		paramName := parseParamTag(tag).Name
		if paramName == "" {
			continue
		}

		paramValue := annotation.GetParam(paramName)
		if paramValue == "" {
			def, ok := defMap[paramName]
			if ok && def.Required {
				return fmt.Errorf("@%s 缺少必填参数 %s", annotation.Name, paramName)
			}
			paramValue = def.Default
		}

		if err := setFieldValue(fieldVal, paramValue); err != nil {
			return fmt.Errorf("参数 %s=%q: %w", paramName, paramValue, err)
		}
	}

	return nil
}

// setFieldValue 设置字段值，支持 string, int, uint, bool, float
func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := cast.ToInt64E(orZero(value))
		if err != nil {
			return err
		}
		field.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := cast.ToUint64E(orZero(value))
		if err != nil {
			return err
		}
		field.SetUint(v)
	case reflect.Bool:
		if value == "" {
			field.SetBool(false)
			return nil
		}
		v, err := cast.ToBoolE(value)
		if err != nil {
			return err
		}
		field.SetBool(v)
	case reflect.Float32, reflect.Float64:
		v, err := cast.ToFloat64E(orZero(value))
		if err != nil {
			return err
		}
		field.SetFloat(v)
	}
	return nil
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
