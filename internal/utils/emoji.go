package utils

import (
	"unicode/utf8"
)

// 常用 emoji 白名单，命中直接放行，不走长度/字符校验
var CommonEmojis = []string{
	"👍", "👎", "❤️", "😂", "😮", "😢", "😡", "🎉", "🤔", "👏",
}

var commonEmojiSet = func() map[string]bool {
	m := make(map[string]bool, len(CommonEmojis))
	for _, e := range CommonEmojis {
		m[e] = true
	}
	return m
}()

const (
	// MaxEmojiBytes: 191 字符 × 4 字节 UTF-8 的防御性上限
	MaxEmojiBytes = 760
	// MaxEmojiRunes: 容纳带 ZWJ 的组合序列（如 👨‍👩‍👧‍👦）
	MaxEmojiRunes = 64
)

func IsCommonEmoji(s string) bool {
	return commonEmojiSet[s]
}

// IsValidEmoji 长度与安全过滤，不判断是否真能渲染成 emoji 图形
func IsValidEmoji(s string) bool {
	if IsCommonEmoji(s) {
		return true
	}
	if s == "" {
		return false
	}
	if len(s) > MaxEmojiBytes {
		return false
	}
	n := utf8.RuneCountInString(s)
	if n == 0 || n > MaxEmojiRunes {
		return false
	}
	// 拒绝 ASCII 控制字符（\t \n \r 除外）
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b <= 0x08:
			return false
		case b == 0x0B || b == 0x0C:
			return false
		case b >= 0x0E && b <= 0x1F:
			return false
		case b == 0x7F:
			return false
		}
	}
	return true
}
