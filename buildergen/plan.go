package buildergen

import (
	"github.com/bytedance/sonic"
	"github.com/donutnomad/buildgen/internal/structparse"
)

// Plan 解析源文件中的类型并生成 Builder 声明，不渲染
func Plan(filename, name string, opts ...Option) (*Declarations, error) {
	g := &BuilderGenerator{parser: structparse.NewParseContext()}
	return g.plan(filename, name, opts...)
}

// planView Declarations 的可读形式，类型以源码拼写输出
type planView struct {
	Record  string      `json:"record"`
	Builder string      `json:"builder"`
	Factory string      `json:"factory"`
	Build   string      `json:"build"`
	Fields  []planField `json:"fields"`
}

type planField struct {
	Field   string `json:"field"`
	Kind    string `json:"kind"`
	Slot    string `json:"slot"`
	Storage string `json:"storage"`
	Method  string `json:"method"`
	Param   string `json:"param"`
	Arg     string `json:"arg"`
	Extract string `json:"extract"`
}

// JSON 以缩进 JSON 输出生成计划
func (d *Declarations) JSON() ([]byte, error) {
	view := planView{
		Record:  d.Record,
		Builder: d.Builder,
		Factory: d.Factory,
		Build:   d.Finalizer.Name,
	}
	for i, s := range d.Slots {
		m := d.Methods[i]
		view.Fields = append(view.Fields, planField{
			Field:   s.Field,
			Kind:    s.Kind.String(),
			Slot:    s.Name,
			Storage: s.Storage.String(),
			Method:  m.Name,
			Param:   m.Param,
			Arg:     m.Arg.String(),
			Extract: d.Finalizer.Steps[i].Op.String(),
		})
	}
	return sonic.ConfigStd.MarshalIndent(view, "", "  ")
}
