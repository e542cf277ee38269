package command

import (
	"time"

	opt "github.com/samber/mo"
)

// Command 命令行调用
// @Builder
type Command struct {
	Executable string
	// 参数
	Args opt.Option[string]
	// @Builder(each = "AddEnv")
	Env     []string
	Timeout time.Duration `json:"timeout"` // 超时
	a, b    int
}
