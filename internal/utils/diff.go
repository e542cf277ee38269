package utils

import (
	"errors"
	"io/fs"
	"os"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff 对比磁盘上的文件与新生成的内容，返回 unified diff
// 内容一致时返回空字符串；文件不存在视为空文件
func Diff(path string, src []byte) (string, error) {
	want, err := Format(path, src)
	if err != nil {
		return "", err
	}
	have, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	if string(have) == string(want) {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(have)),
		B:        difflib.SplitLines(string(want)),
		FromFile: path,
		ToFile:   path + " (generated)",
		Context:  3,
	})
}
