package suppress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// TestIsSuppressed_NoReplySenders tests that no-reply local parts never get a
// reply regardless of domain
func TestIsSuppressed_NoReplySenders(t *testing.T) {
	checker := NewChecker(nil, zap.NewNop())

	assert.True(t, checker.IsSuppressed("no-reply@example.com"))
	assert.True(t, checker.IsSuppressed("noreply@example.com"))
	assert.True(t, checker.IsSuppressed("DoNotReply@example.com"))
	assert.True(t, checker.IsSuppressed("do-not-reply@example.com"))
	assert.False(t, checker.IsSuppressed("alice@example.com"))
}

// TestIsSuppressed_Domains tests configured domain suppression
func TestIsSuppressed_Domains(t *testing.T) {
	checker := NewChecker([]string{"Mailer.Example.COM", " lists.example.org "}, zap.NewNop())

	assert.True(t, checker.IsSuppressed("news@mailer.example.com"))
	assert.True(t, checker.IsSuppressed("digest@lists.example.org"))
	assert.False(t, checker.IsSuppressed("alice@example.com"))
}

// TestIsSuppressed_DisplayStrings tests display-string senders
func TestIsSuppressed_DisplayStrings(t *testing.T) {
	checker := NewChecker([]string{"mailer.example.com"}, zap.NewNop())

	assert.True(t, checker.IsSuppressed("Acme News <news@mailer.example.com>"))
	assert.True(t, checker.IsSuppressed("Acme <no-reply@acme.test>"))
	assert.False(t, checker.IsSuppressed("Alice <alice@example.com>"))
}

// TestIsSuppressed_Malformed tests that senders without an address pass through
func TestIsSuppressed_Malformed(t *testing.T) {
	checker := NewChecker([]string{"mailer.example.com"}, zap.NewNop())

	assert.False(t, checker.IsSuppressed(""))
	assert.False(t, checker.IsSuppressed("not-an-address"))
	assert.False(t, checker.IsSuppressed("two@@example.com"))
}

// TestExtractAddress tests bare address extraction
func TestExtractAddress(t *testing.T) {
	assert.Equal(t, "a@x.test", extractAddress("Alice <a@x.test>"))
	assert.Equal(t, "a@x.test", extractAddress(" a@x.test "))
	assert.Equal(t, "Alice <a@x.test", extractAddress("Alice <a@x.test"))
}
