package snapshot

import (
	"encoding/binary"
	"fmt"
	"io"
)

// special subformats, selected by the low 6 bits of a length byte whose top
// two bits are 11.
const (
	specialInt8  = 0x00
	specialInt16 = 0x01
	specialInt32 = 0x02
	specialLZF   = 0x03
)

// length is the result of decoding one length-encoded field: either a plain
// byte count, or a special integer-string/compressed-string encoding.
type length struct {
	isSpecial bool
	plain     uint64
	special   byte // one of the special* constants above
}

// readLength decodes one length-encoded integer per the top-two-bits
// dispatch: 00 -> 6-bit length, 01 -> 14-bit length, 10 -> 32-bit length,
// 11 -> a special subformat.
func readLength(r io.Reader) (length, error) {
	var first [1]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return length{}, fmt.Errorf("%w: read length byte: %w", ErrParse, err)
	}

	switch first[0] >> 6 {
	case 0b00:
		return length{plain: uint64(first[0] & 0x3f)}, nil

	case 0b01:
		var next [1]byte
		if _, err := io.ReadFull(r, next[:]); err != nil {
			return length{}, fmt.Errorf("%w: read 14-bit length: %w", ErrParse, err)
		}
		v := uint64(first[0]&0x3f)<<8 | uint64(next[0])
		return length{plain: v}, nil

	case 0b10:
		var next [4]byte
		if _, err := io.ReadFull(r, next[:]); err != nil {
			return length{}, fmt.Errorf("%w: read 32-bit length: %w", ErrParse, err)
		}
		return length{plain: uint64(binary.BigEndian.Uint32(next[:]))}, nil

	default: // 0b11
		return length{isSpecial: true, special: first[0] & 0x3f}, nil
	}
}

// readLengthInt reads a length-encoded integer and requires it to be a
// plain (non-special) length, as used by RESIZE_DB and SELECT_DB bodies.
func readLengthInt(r io.Reader) (uint64, error) {
	l, err := readLength(r)
	if err != nil {
		return 0, err
	}
	if l.isSpecial {
		return 0, fmt.Errorf("%w: expected a plain length-encoded integer, got special subformat", ErrParse)
	}
	return l.plain, nil
}

// readString decodes a length-encoded or special-integer string: a plain
// length reads that many raw bytes; a special integer subformat renders the
// numeric value's ASCII decimal form as the resulting string.
func readString(r io.Reader) (string, error) {
	l, err := readLength(r)
	if err != nil {
		return "", err
	}

	if !l.isSpecial {
		if l.plain == 0 {
			return "", nil
		}
		buf := make([]byte, l.plain)
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("%w: read %d-byte string: %w", ErrParse, l.plain, err)
		}
		return string(buf), nil
	}

	switch l.special {
	case specialInt8:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return "", fmt.Errorf("%w: read 8-bit integer string: %w", ErrParse, err)
		}
		return fmt.Sprintf("%d", b[0]), nil

	case specialInt16:
		// Big-endian, not the little-endian byte order used elsewhere
		// in the format.
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return "", fmt.Errorf("%w: read 16-bit integer string: %w", ErrParse, err)
		}
		return fmt.Sprintf("%d", binary.BigEndian.Uint16(b[:])), nil

	case specialInt32:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return "", fmt.Errorf("%w: read 32-bit integer string: %w", ErrParse, err)
		}
		return fmt.Sprintf("%d", binary.BigEndian.Uint32(b[:])), nil

	case specialLZF:
		return "", fmt.Errorf("%w: LZF-compressed strings are not supported", ErrParse)

	default:
		return "", fmt.Errorf("%w: unrecognized special string subformat %#x", ErrParse, l.special)
	}
}
