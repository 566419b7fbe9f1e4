package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testEncoder() *PasswordEncoder { return &PasswordEncoder{Cost: bcrypt.MinCost} }

func TestEncodeProducesBcryptScheme(t *testing.T) {
	enc := testEncoder()
	encoded := enc.Encode("secret")
	require.True(t, IsEncoded(encoded))
	assert.Regexp(t, `^\{bcrypt\}\$2[aby]\$`, encoded)

	assert.True(t, enc.Matches("secret", encoded))
	assert.False(t, enc.Matches("wrong", encoded))
}

func TestMatchesNoopScheme(t *testing.T) {
	enc := testEncoder()
	assert.True(t, enc.Matches("admin123", "{noop}admin123"))
	assert.False(t, enc.Matches("admin124", "{noop}admin123"))
}

func TestMatchesRejectsUnknownOrUnmarked(t *testing.T) {
	enc := testEncoder()
	assert.False(t, enc.Matches("secret", "secret"))          // 无标记
	assert.False(t, enc.Matches("secret", "{pbkdf2}abcdef"))  // 未知 scheme
	assert.False(t, enc.Matches("secret", "{noop}"))          // 空内容
}

// 登录桥对明文的包装是 {noop} + bcrypt 串，noop 按明文比对时
// 拿原密码去比 "{bcrypt}..."，必然不通过——这是被沿用的既有行为
func TestDoubleWrappedCredentialNeverMatches(t *testing.T) {
	enc := testEncoder()
	wrapped := NoopPrefix + enc.Encode("secret")
	assert.False(t, enc.Matches("secret", wrapped))
}

func TestIsEncoded(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"secret", false},
		{"{noop}secret", true},
		{"{bcrypt}$2a$10$abcdefg", true},
		{"{}secret", false},
		{"{noop}", false},
		{"", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsEncoded(c.in), "input %q", c.in)
	}
}
