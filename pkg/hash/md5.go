// Package hash 提供内容指纹计算。
package hash

import (
	"crypto/md5"
	"encoding/hex"
)

// MD5Hex 返回 UTF-8 文本的 MD5 十六进制摘要（32 位小写）。
func MD5Hex(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
