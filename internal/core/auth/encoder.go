package auth

import (
	"crypto/subtle"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// 凭证统一存成 "{scheme}hash" 形式，scheme 决定校验方式
const (
	SchemeBcrypt = "bcrypt"
	SchemeNoop   = "noop"

	NoopPrefix = "{noop}"
)

// 已编码凭证的识别模式：{scheme} 前缀 + 非空内容
var encodedPattern = regexp.MustCompile(`^\{.+\}.+`)

// IsEncoded 判断凭证是否已带 {scheme} 标记
func IsEncoded(s string) bool { return encodedPattern.MatchString(s) }

// PasswordEncoder 多方案委托编码器：Encode 固定产出 bcrypt，
// Matches 按存储值自带的 scheme 分发校验
type PasswordEncoder struct {
	Cost int // 0 则用 bcrypt.DefaultCost
}

func NewPasswordEncoder() *PasswordEncoder { return &PasswordEncoder{} }

func (e *PasswordEncoder) Encode(raw string) string {
	cost := e.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, _ := bcrypt.GenerateFromPassword([]byte(raw), cost)
	return "{" + SchemeBcrypt + "}" + string(b)
}

// Matches 校验明文与存储凭证。未知 scheme 或无标记一律不通过
func (e *PasswordEncoder) Matches(raw, encoded string) bool {
	scheme, rest, ok := splitScheme(encoded)
	if !ok {
		return false
	}
	switch scheme {
	case SchemeBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(rest), []byte(raw)) == nil
	case SchemeNoop:
		return subtle.ConstantTimeCompare([]byte(raw), []byte(rest)) == 1
	default:
		return false
	}
}

func splitScheme(s string) (scheme, rest string, ok bool) {
	if !strings.HasPrefix(s, "{") {
		return "", "", false
	}
	end := strings.IndexByte(s, '}')
	if end <= 1 || end == len(s)-1 {
		return "", "", false
	}
	return s[1:end], s[end+1:], true
}
