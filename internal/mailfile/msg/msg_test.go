package msg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/llm-email-pipeline/internal/mailfile"
)

// TestParse_InvoiceFile tests a full parse of a small .msg container: stream
// walking, property routing, the fixed-properties date and attachment grouping
func TestParse_InvoiceFile(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "invoice.msg"))
	require.NoError(t, err)

	m, err := Parse(data)
	require.NoError(t, err)

	subject, ok := m.Subject()
	require.True(t, ok)
	assert.Equal(t, "Quarterly Invoice", subject)

	body, ok := m.Body()
	require.True(t, ok)
	assert.Equal(t, "Please find invoice INV-2024-001 attached.", body)

	sender, ok := m.Sender()
	require.True(t, ok)
	assert.Equal(t, "Acme Billing <billing@acme.test>", sender)

	to, ok := m.To()
	require.True(t, ok)
	assert.Equal(t, "ap@example.com", to)

	date, ok := m.Date()
	require.True(t, ok)
	assert.True(t, date.Structured)
	assert.True(t, date.Time.Equal(time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-06-15T09:00:00Z", date.String())

	atts := m.Attachments()
	require.Len(t, atts, 1)
	assert.Equal(t, "invoice.pdf", atts[0].LongFilename)
}

// TestParse_CorruptFile tests that invalid compound file bytes fail cleanly
func TestParse_CorruptFile(t *testing.T) {
	corrupt := append([]byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}, make([]byte, 128)...)

	_, err := Parse(corrupt)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "compound file")
}

// TestSender tests sender display string assembly from name and address
func TestSender(t *testing.T) {
	m := &Message{strings: map[uint16]string{
		propSenderName:  "Acme Billing",
		propSenderEmail: "billing@acme.test",
	}}
	sender, ok := m.Sender()
	require.True(t, ok)
	assert.Equal(t, "Acme Billing <billing@acme.test>", sender)

	m = &Message{strings: map[uint16]string{propSenderEmail: "billing@acme.test"}}
	sender, ok = m.Sender()
	require.True(t, ok)
	assert.Equal(t, "billing@acme.test", sender)

	m = &Message{strings: map[uint16]string{propSenderName: "Acme Billing"}}
	sender, ok = m.Sender()
	require.True(t, ok)
	assert.Equal(t, "Acme Billing", sender)

	m = &Message{strings: map[uint16]string{}}
	_, ok = m.Sender()
	assert.False(t, ok)
}

// TestResolveAttachments tests attachment ordering and long filename mapping
func TestResolveAttachments(t *testing.T) {
	m := &Message{strings: map[uint16]string{}}

	names := map[string]bool{
		"__attach_version1.0_#00000001": true,
		"__attach_version1.0_#00000000": true,
		"__attach_version1.0_#00000002": true,
	}
	longNames := map[string]string{
		"__attach_version1.0_#00000000": "invoice.pdf",
		"__attach_version1.0_#00000002": "terms.txt",
	}

	m.resolveAttachments(names, longNames)

	require.Len(t, m.attachments, 3)
	assert.Equal(t, []mailfile.Attachment{
		{LongFilename: "invoice.pdf"},
		{LongFilename: ""},
		{LongFilename: "terms.txt"},
	}, m.attachments)
}

// TestResolveDate tests the structured-then-raw date preference
func TestResolveDate(t *testing.T) {
	// Raw header date only
	m := &Message{strings: map[uint16]string{
		propTransportHeaders: "Date: Wed, 01 Jan 2020 10:00:00 +0000\r\n",
	}}
	m.resolveDate(nil)
	date, ok := m.Date()
	require.True(t, ok)
	assert.False(t, date.Structured)
	assert.Equal(t, "Wed, 01 Jan 2020 10:00:00 +0000", date.String())

	// No date at all
	m = &Message{strings: map[uint16]string{}}
	m.resolveDate(nil)
	_, ok = m.Date()
	assert.False(t, ok)
}
