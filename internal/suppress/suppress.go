// Package suppress decides which senders never receive an auto-response,
// such as no-reply addresses and suppressed domains.
package suppress

import (
	"strings"

	"go.uber.org/zap"
)

// noReplyLocalParts are sender local parts that never get a reply
var noReplyLocalParts = []string{"no-reply", "noreply", "donotreply", "do-not-reply"}

// Checker reports whether an auto-response should be suppressed for a sender
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a checker over the configured suppressed domains
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, len(domains))
	for i, domain := range domains {
		normalized[i] = strings.ToLower(strings.TrimSpace(domain))
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized auto-response suppression", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// IsSuppressed checks whether the sender address should not be auto-replied
// to. The sender may be a bare address or a "Name <addr>" display string.
func (c *Checker) IsSuppressed(sender string) bool {
	addr := extractAddress(sender)

	parts := strings.Split(addr, "@")
	if len(parts) != 2 {
		return false
	}
	local := strings.ToLower(parts[0])
	domain := strings.ToLower(parts[1])

	for _, noReply := range noReplyLocalParts {
		if local == noReply {
			return true
		}
	}

	for _, suppressed := range c.domains {
		if suppressed == domain {
			if c.logger != nil {
				c.logger.Debug("Sender domain is suppressed",
					zap.String("domain", domain),
					zap.String("sender", addr))
			}
			return true
		}
	}

	return false
}

// extractAddress pulls the bare address out of a display string
func extractAddress(sender string) string {
	if start := strings.IndexByte(sender, '<'); start >= 0 {
		if end := strings.IndexByte(sender[start:], '>'); end > 0 {
			return strings.TrimSpace(sender[start+1 : start+end])
		}
	}
	return strings.TrimSpace(sender)
}
