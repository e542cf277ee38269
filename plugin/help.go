package plugin

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// FormatHelpText 为所有注册的生成器生成帮助文本
func FormatHelpText(registry *Registry) string {
	generators := registry.Generators()
	if len(generators) == 0 {
		return "  (暂无已注册的生成器)\n"
	}

	var sb strings.Builder
	for _, gen := range generators {
		annotations := gen.Annotations()
		if len(annotations) == 0 {
			continue
		}
		mainAnnotation := annotations[0]

		fmt.Fprintf(&sb, "  @%s - %s\n", mainAnnotation, gen.Name())
		sb.WriteString("    参数:\n")

		// output 是所有生成器共用的参数
		params := []ParamDef{{Name: "output", Description: "输出文件路径（支持 $FILE、$PACKAGE 模板变量）"}}
		for _, p := range gen.ParamDefs() {
			if p.Name != "output" {
				params = append(params, p)
			}
		}
		writeParamTable(&sb, params)

		sb.WriteString("    示例:\n")
		fmt.Fprintf(&sb, "      @%s\n", mainAnnotation)
		fmt.Fprintf(&sb, "      @%s(output=$FILE_builder.go)\n", mainAnnotation)
		fmt.Fprintf(&sb, "      @%s(output=$PACKAGE_builders.go)\n", mainAnnotation)
		sb.WriteString("\n")
	}

	return sb.String()
}

// writeParamTable 参数名一列按显示宽度对齐，兼容中文
func writeParamTable(sb *strings.Builder, params []ParamDef) {
	heads := make([]string, len(params))
	width := 0
	for i, p := range params {
		head := p.Name
		if p.Required {
			head += " (必填)"
		}
		if p.Default != "" {
			head += fmt.Sprintf(" [默认: %s]", p.Default)
		}
		heads[i] = head
		width = max(width, runewidth.StringWidth(head))
	}
	for i, p := range params {
		fmt.Fprintf(sb, "      %s  %s\n", runewidth.FillRight(heads[i], width), p.Description)
	}
}

// FormatParamDef 格式化单个参数定义
func FormatParamDef(param ParamDef) string {
	parts := []string{param.Name}

	if param.Required {
		parts = append(parts, "required")
	} else {
		parts = append(parts, "optional")
	}
	if param.Default != "" {
		parts = append(parts, "default="+param.Default)
	}
	if param.Description != "" {
		parts = append(parts, param.Description)
	}

	return strings.Join(parts, ", ")
}
