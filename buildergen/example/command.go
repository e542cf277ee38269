// Package example 展示 @Builder 的生成结果，command_builder.go 由 buildgen 生成
package example

import (
	"time"

	"github.com/samber/mo"
)

//go:generate go run github.com/donutnomad/buildgen .

// Command 一次进程调用
// @Builder
type Command struct {
	Executable string
	Args       mo.Option[string]
	// @Builder(each = "AddEnv")
	Env []string
}

// Pipeline 累加方法与未导出字段同名
// @Builder
type Pipeline struct {
	Name string
	// @Builder(each = "stages")
	stages []string
}

// Point 只有必填字段
// @Builder
type Point struct {
	X int
	Y int
	Z int
}

// Request 自定义 Builder 名称
// @Builder(name=RequestSpec, factory=NewRequest, build=Finish)
type Request struct {
	URL     string
	Timeout mo.Option[time.Duration]
	Headers map[string]string
	// @Builder(each = "Retry")
	Backoff []time.Duration
}
