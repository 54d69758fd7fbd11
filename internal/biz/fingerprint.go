package biz

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Fingerprint 计算输入文本的去重指纹
// 规范化：转小写、去掉全部空白字符，再取 md5 摘要
// 纯函数，无副作用
func Fingerprint(text string) string {
	normalized := strings.ToLower(text)
	normalized = strings.Join(strings.Fields(normalized), "")
	normalized = strings.TrimSpace(normalized)

	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
