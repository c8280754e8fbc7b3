// Package eml parses RFC 5322/MIME messages into the mailfile.Container
// capability.
package eml

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"golang.org/x/text/encoding/charmap"

	"github.com/mikey/llm-email-pipeline/internal/mailfile"
)

func init() {
	// Register additional charsets that are commonly used in emails
	charset.RegisterEncoding("windows-1252", charmap.Windows1252)
	charset.RegisterEncoding("iso-8859-1", charmap.ISO8859_1)
	charset.RegisterEncoding("iso-8859-15", charmap.ISO8859_15)
}

// Message is a parsed RFC 5322 message.
type Message struct {
	subject     string
	body        string
	sender      string
	to          string
	date        mailfile.Date
	hasDate     bool
	attachments []mailfile.Attachment
}

// Parse parses the raw bytes of an RFC 5322 message.
func Parse(data []byte) (mailfile.Container, error) {
	mr, err := mail.CreateReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create mail reader: %w", err)
	}

	m := &Message{}
	header := mr.Header

	if subject, err := header.Subject(); err == nil {
		m.subject = subject
	} else {
		m.subject = header.Get("Subject")
	}

	if fromAddrs, err := header.AddressList("From"); err == nil && len(fromAddrs) > 0 {
		m.sender = formatAddress(fromAddrs[0].Name, fromAddrs[0].Address)
	}

	if toAddrs, err := header.AddressList("To"); err == nil && len(toAddrs) > 0 {
		m.to = formatAddress(toAddrs[0].Name, toAddrs[0].Address)
	} else {
		m.to = header.Get("To")
	}

	if date, err := header.Date(); err == nil && !date.IsZero() {
		m.date = mailfile.Date{Time: date, Structured: true}
		m.hasDate = true
	} else if raw := header.Get("Date"); raw != "" {
		m.date = mailfile.Date{Raw: raw}
		m.hasDate = true
	}

	var htmlBody string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read part: %w", err)
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			body, err := io.ReadAll(part.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to read body: %w", err)
			}
			if strings.HasPrefix(contentType, "text/plain") {
				if m.body == "" {
					m.body = string(body)
				}
			} else if strings.HasPrefix(contentType, "text/html") {
				htmlBody = string(body)
			}

		case *mail.AttachmentHeader:
			filename, _ := h.Filename()
			// Attachment content is not needed downstream, drain the part
			if _, err := io.Copy(io.Discard, part.Body); err != nil {
				return nil, fmt.Errorf("failed to read attachment: %w", err)
			}
			m.attachments = append(m.attachments, mailfile.Attachment{
				LongFilename: filename,
			})
		}
	}

	// Fall back to the HTML part when no plain-text rendering exists
	if m.body == "" {
		m.body = htmlBody
	}

	return m, nil
}

// formatAddress renders an address the way it appeared in the header.
func formatAddress(name, addr string) string {
	if name != "" && addr != "" {
		return fmt.Sprintf("%s <%s>", name, addr)
	}
	if addr != "" {
		return addr
	}
	return name
}

// Subject returns the message subject
func (m *Message) Subject() (string, bool) {
	return m.subject, m.subject != ""
}

// Body returns the plain-text message body
func (m *Message) Body() (string, bool) {
	return m.body, m.body != ""
}

// Sender returns the From address display string
func (m *Message) Sender() (string, bool) {
	return m.sender, m.sender != ""
}

// To returns the first To address display string
func (m *Message) To() (string, bool) {
	return m.to, m.to != ""
}

// Date returns the message date value
func (m *Message) Date() (mailfile.Date, bool) {
	return m.date, m.hasDate
}

// Attachments returns the attachment records in message order
func (m *Message) Attachments() []mailfile.Attachment {
	return m.attachments
}
