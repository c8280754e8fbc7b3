// Package msg parses Outlook .msg containers (OLE compound files holding MAPI
// property streams) into the mailfile.Container capability.
package msg

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/richardlehane/mscfb"

	"github.com/mikey/llm-email-pipeline/internal/mailfile"
)

// MAPI property IDs read from the container
const (
	propSubject          = 0x0037
	propTransportHeaders = 0x007D
	propSenderName       = 0x0C1A
	propSenderEmail      = 0x0C1F
	propDisplayTo        = 0x0E04
	propBody             = 0x1000
	propAttachLongName   = 0x3707
)

// attachPrefix names the per-attachment storages inside a .msg container
const attachPrefix = "__attach_version1.0_#"

// Message is a parsed .msg container.
type Message struct {
	strings     map[uint16]string
	date        mailfile.Date
	hasDate     bool
	attachments []mailfile.Attachment
}

// Parse parses the raw bytes of a .msg file.
func Parse(data []byte) (mailfile.Container, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open compound file: %w", err)
	}

	m := &Message{strings: make(map[uint16]string)}

	var fixedProps []byte
	attachNames := make(map[string]bool)
	attachLongNames := make(map[string]string)

	for entry, err := doc.Next(); err != io.EOF; entry, err = doc.Next() {
		if err != nil {
			return nil, fmt.Errorf("failed to walk compound file: %w", err)
		}

		switch {
		case len(entry.Path) == 0:
			// Top-level message streams
			if entry.Name == propertiesStreamName {
				fixedProps, err = readStream(entry)
				if err != nil {
					return nil, err
				}
				continue
			}
			id, typ, ok := parseSubstgName(entry.Name)
			if !ok || !isMessageProperty(id) {
				continue
			}
			raw, err := readStream(entry)
			if err != nil {
				return nil, err
			}
			if s, ok := decodeString(raw, typ); ok && s != "" {
				m.strings[id] = s
			}

		case len(entry.Path) == 1 && strings.HasPrefix(entry.Path[0], attachPrefix):
			// Per-attachment storages; remember every storage we see so
			// attachments without a long filename still occupy a slot
			storage := entry.Path[0]
			attachNames[storage] = true

			id, typ, ok := parseSubstgName(entry.Name)
			if !ok || id != propAttachLongName {
				continue
			}
			raw, err := readStream(entry)
			if err != nil {
				return nil, err
			}
			if s, ok := decodeString(raw, typ); ok {
				attachLongNames[storage] = s
			}
		}
	}

	m.resolveDate(fixedProps)
	m.resolveAttachments(attachNames, attachLongNames)

	return m, nil
}

// readStream reads the full content of a compound file stream.
func readStream(entry *mscfb.File) ([]byte, error) {
	raw, err := io.ReadAll(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to read stream %s: %w", entry.Name, err)
	}
	return raw, nil
}

// isMessageProperty reports whether a top-level property ID is one we extract.
func isMessageProperty(id uint16) bool {
	switch id {
	case propSubject, propTransportHeaders, propSenderName, propSenderEmail, propDisplayTo, propBody:
		return true
	}
	return false
}

// resolveDate picks the message date: the structured client-submit or delivery
// timestamp from the fixed properties stream when present, otherwise the raw
// Date header from the transport headers.
func (m *Message) resolveDate(fixedProps []byte) {
	if len(fixedProps) > 0 {
		times := parseFixedProperties(fixedProps, messagePropsHeaderLen)
		if t, ok := times[tagClientSubmitTime]; ok {
			m.date = mailfile.Date{Time: t, Structured: true}
			m.hasDate = true
			return
		}
		if t, ok := times[tagDeliveryTime]; ok {
			m.date = mailfile.Date{Time: t, Structured: true}
			m.hasDate = true
			return
		}
	}
	if headers, ok := m.strings[propTransportHeaders]; ok {
		if raw := headerValue(headers, "Date"); raw != "" {
			m.date = mailfile.Date{Raw: raw}
			m.hasDate = true
		}
	}
}

// resolveAttachments orders attachment storages by name. Storage names embed a
// zero-padded hex index, so lexicographic order matches container order.
func (m *Message) resolveAttachments(names map[string]bool, longNames map[string]string) {
	ordered := make([]string, 0, len(names))
	for name := range names {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	for _, name := range ordered {
		m.attachments = append(m.attachments, mailfile.Attachment{
			LongFilename: longNames[name],
		})
	}
}

// headerValue extracts a single header value from a raw transport header
// block, joining folded continuation lines.
func headerValue(headers, name string) string {
	prefix := strings.ToLower(name) + ":"
	lines := strings.Split(headers, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(strings.ToLower(line), prefix) {
			continue
		}
		value := strings.TrimSpace(line[len(prefix):])
		for _, next := range lines[i+1:] {
			next = strings.TrimRight(next, "\r")
			if !strings.HasPrefix(next, " ") && !strings.HasPrefix(next, "\t") {
				break
			}
			value += " " + strings.TrimSpace(next)
		}
		return value
	}
	return ""
}

// Subject returns the message subject
func (m *Message) Subject() (string, bool) {
	s, ok := m.strings[propSubject]
	return s, ok
}

// Body returns the plain-text message body
func (m *Message) Body() (string, bool) {
	s, ok := m.strings[propBody]
	return s, ok
}

// Sender returns the sender display string, combining the stored display name
// and address when both are present.
func (m *Message) Sender() (string, bool) {
	name, hasName := m.strings[propSenderName]
	addr, hasAddr := m.strings[propSenderEmail]
	switch {
	case hasName && hasAddr && name != addr:
		return fmt.Sprintf("%s <%s>", name, addr), true
	case hasAddr:
		return addr, true
	case hasName:
		return name, true
	}
	return "", false
}

// To returns the display-to field
func (m *Message) To() (string, bool) {
	s, ok := m.strings[propDisplayTo]
	return s, ok
}

// Date returns the message date value
func (m *Message) Date() (mailfile.Date, bool) {
	return m.date, m.hasDate
}

// Attachments returns the attachment records in container order
func (m *Message) Attachments() []mailfile.Attachment {
	return m.attachments
}
