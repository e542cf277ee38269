package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testParams struct {
	Name    string  `param:"name=name,required=false,default=,description=Builder 类型名"`
	Prefix  string  `param:"name=prefix,required=true,default=,description=前缀"`
	Limit   int     `param:"name=limit,required=false,default=10,description=上限"`
	Enabled bool    `param:"name=enabled,required=false,default=true,description=开关"`
	Ratio   float64 `param:"name=ratio,required=false,default=,description=比例"`
	Count   uint    `param:"name=count,required=false,default=,description=次数"`
	Ignored string
}

func TestParseParamsFromStruct(t *testing.T) {
	defs := ParseParamsFromStruct(testParams{})
	require.Len(t, defs, 6)

	assert.Equal(t, ParamDef{Name: "name", Description: "Builder 类型名"}, defs[0])
	assert.Equal(t, ParamDef{Name: "prefix", Required: true, Description: "前缀"}, defs[1])
	assert.Equal(t, "10", defs[2].Default)

	assert.Equal(t, defs, ParseParamsFromStruct(&testParams{}), "指针与值得到相同结果")
	assert.Nil(t, ParseParamsFromStruct(nil))
	assert.Nil(t, ParseParamsFromStruct(42))
}

func TestParseParamTagEscape(t *testing.T) {
	def := parseParamTag(`name=output,description=路径\, 支持 $FILE`)
	assert.Equal(t, "output", def.Name)
	assert.Equal(t, "路径, 支持 $FILE", def.Description)
}

func TestParseAnnotationParams(t *testing.T) {
	defs := ParseParamsFromStruct(testParams{})

	t.Run("values and defaults", func(t *testing.T) {
		ann := ParseAnnotations("// @X(name=`Cmd`, prefix=p, ratio=0.5, count=3)")[0]
		var p testParams
		require.NoError(t, ParseAnnotationParams(ann, &p, defs))

		assert.Equal(t, testParams{
			Name:    "Cmd",
			Prefix:  "p",
			Limit:   10,
			Enabled: true,
			Ratio:   0.5,
			Count:   3,
		}, p)
	})

	t.Run("missing required", func(t *testing.T) {
		ann := ParseAnnotations("// @X(name=Cmd)")[0]
		var p testParams
		err := ParseAnnotationParams(ann, &p, defs)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "prefix")
	})

	t.Run("invalid int", func(t *testing.T) {
		ann := ParseAnnotations("// @X(prefix=p, limit=abc)")[0]
		var p testParams
		err := ParseAnnotationParams(ann, &p, defs)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "limit")
	})

	t.Run("non pointer target is ignored", func(t *testing.T) {
		ann := ParseAnnotations("// @X(prefix=p)")[0]
		assert.NoError(t, ParseAnnotationParams(ann, testParams{}, defs))
	})
}
