// 目录名是 renamed，包名是 other
package other

type Value struct{}
