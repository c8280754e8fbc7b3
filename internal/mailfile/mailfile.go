package mailfile

import (
	"bytes"
	"time"
)

// cfbMagic is the OLE compound file signature that identifies Outlook .msg files
var cfbMagic = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}

// IsCFB reports whether data starts with the OLE compound file signature.
func IsCFB(data []byte) bool {
	return len(data) >= len(cfbMagic) && bytes.Equal(data[:len(cfbMagic)], cfbMagic)
}

// Container exposes the fields of a parsed email container. Every field is
// optional; the second return value reports whether the container stored a
// value at all, so callers never have to treat "" as absence.
type Container interface {
	// Subject returns the message subject
	Subject() (string, bool)

	// Body returns the plain-text rendering of the message body
	Body() (string, bool)

	// Sender returns the sender address/display string as stored in the container
	Sender() (string, bool)

	// To returns the primary "to" field as stored in the container
	To() (string, bool)

	// Date returns the message date value
	Date() (Date, bool)

	// Attachments returns the attachment records in container order
	Attachments() []Attachment
}

// Attachment is a single attachment record. LongFilename is the human-readable
// display filename; it may be empty when the container only stored an internal
// short name.
type Attachment struct {
	LongFilename string
}

// Date is a container date value, either a structured timestamp or whatever
// raw textual representation the container stored.
type Date struct {
	Time       time.Time
	Structured bool
	Raw        string
}

// String renders a structured date as RFC 3339 and a textual date unchanged.
func (d Date) String() string {
	if d.Structured {
		return d.Time.Format(time.RFC3339)
	}
	return d.Raw
}
