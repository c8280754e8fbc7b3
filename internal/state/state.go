// Package state holds the shared key/value store passed between pipeline
// stages, and the fixed keys that make up the inter-stage contract.
package state

import "sync"

// Keys seeding a pipeline run with the email source.
const (
	KeyEmailFilePath     = "email_file_path"
	KeyEmailFileBytesB64 = "email_file_bytes_b64"
)

// Keys written by the parser stage on success. Downstream stages read these
// and must not be renamed without breaking the stage contract.
const (
	KeyEmailSubject     = "email_subject"
	KeyEmailBody        = "email_body"
	KeySenderEmail      = "sender_email"
	KeyRecipientEmail   = "recipient_email"
	KeyEmailDate        = "email_date"
	KeyEmailAttachments = "email_attachments"
)

// Keys written by the parser stage on failure, before the pipeline halts.
const (
	KeyParsingStatus  = "parsing_status"
	KeyParsingMessage = "parsing_message"
)

// Keys written by the downstream stages.
const (
	KeyEmailCategory       = "email_category"
	KeyCategoryConfidence  = "category_confidence"
	KeyEmailSummary        = "email_summary"
	KeyInvoiceNumber       = "invoice_number"
	KeyInvoiceFound        = "invoice_found"
	KeyInvoiceDetails      = "invoice_details"
	KeyAutoResponse        = "auto_response"
	KeyAutoResponseSkipped = "auto_response_skipped"
)

// Store is the shared state passed from one stage to the next. Stages run
// sequentially, but the store is safe for concurrent use so callers can
// inspect it while a pipeline is running.
type Store struct {
	mu     sync.RWMutex
	values map[string]interface{}
}

// NewStore creates an empty state store.
func NewStore() *Store {
	return &Store{values: make(map[string]interface{})}
}

// Set stores a value under key.
func (s *Store) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Get retrieves a value by key.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetString retrieves a string value by key. It returns "" when the key is
// absent or holds a non-string.
func (s *Store) GetString(key string) string {
	v, ok := s.Get(key)
	if !ok {
		return ""
	}
	str, _ := v.(string)
	return str
}

// GetStringSlice retrieves a string slice value by key.
func (s *Store) GetStringSlice(key string) []string {
	v, ok := s.Get(key)
	if !ok {
		return nil
	}
	slice, _ := v.([]string)
	return slice
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]interface{}, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
