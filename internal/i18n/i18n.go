package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	LocaleEN = "en-US"
	LocaleZH = "zh-CN"

	DefaultLocale = LocaleEN
)

// ResolveLocale 解析语言：依次取 lang 参数、Accept-Language、默认语言
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if lang := NormalizeLocale(c.Query("lang")); lang != "" {
		return lang
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if locale := NormalizeLocale(tag); locale != "" {
			return locale
		}
	}
	return DefaultLocale
}

// NormalizeLocale 规范化语言标签，不支持时返回空串
func NormalizeLocale(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	switch {
	case tag == "":
		return ""
	case strings.HasPrefix(tag, "zh"):
		return LocaleZH
	case strings.HasPrefix(tag, "en"):
		return LocaleEN
	default:
		return ""
	}
}

// T 获取翻译文本，缺失时回退到英文，再回退到 key 本身
func T(locale, key string) string {
	if table, ok := messages[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 格式化翻译文本
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
