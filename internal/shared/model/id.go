package model

import (
	"strings"

	"github.com/google/uuid"
)

// ID 前缀
const (
	IDPrefixUser     = "usr"
	IDPrefixProperty = "prop"
	IDPrefixBooking  = "bk"
)

// NewID 生成带前缀的唯一标识符
// 格式：prefix-xxxxxxxxxxxx（prefix + 12 字符 hex）
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + raw[:12]
}
