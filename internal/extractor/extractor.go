// Package extractor implements the deterministic email extraction step of the
// pipeline: decoding an email container from a file path or base64 payload and
// normalizing its fields.
package extractor

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/mikey/llm-email-pipeline/internal/mailfile"
	"github.com/mikey/llm-email-pipeline/internal/mailfile/eml"
	"github.com/mikey/llm-email-pipeline/internal/mailfile/msg"
)

// Input selects the email source. Exactly one of the two fields should be
// supplied; base64 content takes precedence when both are present.
type Input struct {
	FilePath string
	BytesB64 string
}

// ParsedEmail is the normalized extraction result. Nil pointers mean the
// container stored no value for the field; an empty string never stands in
// for absence.
type ParsedEmail struct {
	Subject     *string
	Body        *string
	Sender      *string
	To          *string
	Date        *string
	Attachments []string
}

// FailureCode classifies an extraction failure.
type FailureCode string

const (
	// FailureDecode means the supplied byte content was not valid base64
	FailureDecode FailureCode = "decode_error"
	// FailureMissingInput means neither a file path nor byte content was supplied
	FailureMissingInput FailureCode = "missing_input"
	// FailureParse means the container could not be opened or parsed
	FailureParse FailureCode = "parse_error"
)

// ParseFailure is the structured error result of a failed extraction.
type ParseFailure struct {
	Code    FailureCode
	Message string
}

// Error implements the error interface
func (f *ParseFailure) Error() string {
	return f.Message
}

// Extract parses an email container and normalizes its fields. The returned
// error, when non-nil, is always a *ParseFailure; extraction never partially
// populates a result. Extraction holds no cross-call state and may be invoked
// concurrently.
func Extract(in Input) (*ParsedEmail, error) {
	var data []byte
	if in.BytesB64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(in.BytesB64)
		if err != nil {
			// The file path, even when supplied, is deliberately not
			// consulted as a fallback here
			return nil, &ParseFailure{
				Code:    FailureDecode,
				Message: fmt.Sprintf("Failed to decode base64 content: %v", err),
			}
		}
		data = decoded
	}

	var (
		container mailfile.Container
		err       error
	)
	switch {
	case len(data) > 0:
		container, err = openBytes(data)
	case in.FilePath != "":
		container, err = openPath(in.FilePath)
	default:
		return nil, &ParseFailure{
			Code:    FailureMissingInput,
			Message: "No email file path or base64 content provided.",
		}
	}
	if err != nil {
		return nil, &ParseFailure{
			Code:    FailureParse,
			Message: fmt.Sprintf("Failed to parse email: %v", err),
		}
	}

	return normalize(container), nil
}

// openBytes parses an in-memory container, sniffing the format from the
// leading bytes: OLE compound files are parsed as Outlook .msg, everything
// else as RFC 5322.
func openBytes(data []byte) (mailfile.Container, error) {
	if mailfile.IsCFB(data) {
		return msg.Parse(data)
	}
	return eml.Parse(data)
}

// openPath reads and parses a container from the filesystem.
func openPath(path string) (mailfile.Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return openBytes(data)
}

// normalize copies the container's optional fields into the result. Only
// attachments exposing a non-empty long filename are included, in container
// order.
func normalize(c mailfile.Container) *ParsedEmail {
	parsed := &ParsedEmail{Attachments: []string{}}

	if v, ok := c.Subject(); ok {
		parsed.Subject = &v
	}
	if v, ok := c.Body(); ok {
		parsed.Body = &v
	}
	if v, ok := c.Sender(); ok {
		parsed.Sender = &v
	}
	if v, ok := c.To(); ok {
		parsed.To = &v
	}
	if d, ok := c.Date(); ok {
		s := d.String()
		parsed.Date = &s
	}
	for _, att := range c.Attachments() {
		if att.LongFilename != "" {
			parsed.Attachments = append(parsed.Attachments, att.LongFilename)
		}
	}

	return parsed
}

// ResultMap renders an extraction outcome as the external result mapping with
// a status field of "success" or "error".
func ResultMap(parsed *ParsedEmail, err error) map[string]interface{} {
	if err != nil {
		return map[string]interface{}{
			"status":  "error",
			"message": err.Error(),
		}
	}
	return map[string]interface{}{
		"status":      "success",
		"subject":     parsed.Subject,
		"body":        parsed.Body,
		"sender":      parsed.Sender,
		"to":          parsed.To,
		"date":        parsed.Date,
		"attachments": parsed.Attachments,
	}
}
