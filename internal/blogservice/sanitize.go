package blogservice

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	scriptTagRX = regexp.MustCompile(`(?is)<\s*script[^>]*>(.*?)<\s*/\s*script\s*>`)
	tagRX       = regexp.MustCompile(`<[^>]*>`)
)

func sanitizeContent(content string) string {
	return scriptTagRX.ReplaceAllString(content, "")
}

// textLength counts the characters left once markup is removed.
func textLength(content string) int {
	return utf8.RuneCountInString(strings.TrimSpace(tagRX.ReplaceAllString(content, "")))
}
