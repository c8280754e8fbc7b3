package msg

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const (
	// substgPrefix names variable-length property streams: the 8 hex digits
	// after the prefix are the property ID followed by the property type
	substgPrefix = "__substg1.0_"

	// propertiesStreamName holds the fixed-length properties
	propertiesStreamName = "__properties_version1.0"

	// messagePropsHeaderLen is the header size of the fixed properties stream
	// at message level (attachment and recipient storages use 8)
	messagePropsHeaderLen = 32

	// MAPI property types we decode
	typeUnicode = 0x001F
	typeString8 = 0x001E

	// Full property tags (ID<<16 | type) for PT_SYSTIME values
	tagClientSubmitTime = 0x00390040
	tagDeliveryTime     = 0x0E060040
)

const (
	// filetimeTicksPerSecond is the FILETIME resolution, 100ns ticks
	filetimeTicksPerSecond = 10_000_000

	// filetimeEpochDelta is the seconds between the FILETIME epoch
	// (1601-01-01) and the Unix epoch
	filetimeEpochDelta = 11_644_473_600
)

// parseSubstgName splits a __substg1.0_XXXXYYYY stream name into property ID
// and property type.
func parseSubstgName(name string) (id uint16, typ uint16, ok bool) {
	if !strings.HasPrefix(name, substgPrefix) {
		return 0, 0, false
	}
	suffix := name[len(substgPrefix):]
	if len(suffix) != 8 {
		return 0, 0, false
	}
	raw, err := hex.DecodeString(suffix)
	if err != nil {
		return 0, 0, false
	}
	id = binary.BigEndian.Uint16(raw[0:2])
	typ = binary.BigEndian.Uint16(raw[2:4])
	return id, typ, true
}

// decodeString decodes a string property stream. Unicode properties are
// UTF-16LE; 8-bit properties are treated as Windows-1252, which covers the
// code pages seen in practice. Trailing NUL terminators are stripped.
func decodeString(raw []byte, typ uint16) (string, bool) {
	switch typ {
	case typeUnicode:
		dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
		out, err := dec.Bytes(raw)
		if err != nil {
			return "", false
		}
		return strings.TrimRight(string(out), "\x00"), true
	case typeString8:
		out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return "", false
		}
		return strings.TrimRight(string(out), "\x00"), true
	}
	return "", false
}

// parseFixedProperties scans a __properties_version1.0 stream and returns the
// PT_SYSTIME values keyed by full property tag. Entries are 16 bytes: a 4-byte
// tag, 4 bytes of flags and an 8-byte value.
func parseFixedProperties(data []byte, headerLen int) map[uint32]time.Time {
	times := make(map[uint32]time.Time)
	if len(data) < headerLen {
		return times
	}
	for off := headerLen; off+16 <= len(data); off += 16 {
		tag := binary.LittleEndian.Uint32(data[off : off+4])
		if tag&0xFFFF != 0x0040 {
			continue
		}
		ft := binary.LittleEndian.Uint64(data[off+8 : off+16])
		times[tag] = filetimeToTime(ft)
	}
	return times
}

// filetimeToTime converts a Windows FILETIME (100ns ticks since 1601) to UTC.
// The seconds and sub-second ticks are converted separately; going through a
// nanosecond duration would overflow for any date after 1893.
func filetimeToTime(ft uint64) time.Time {
	secs := int64(ft/filetimeTicksPerSecond) - filetimeEpochDelta
	nanos := int64(ft%filetimeTicksPerSecond) * 100
	return time.Unix(secs, nanos).UTC()
}
