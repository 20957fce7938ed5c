// Package snapshot parses the compact binary snapshot format used to seed
// the server's keyspace at startup: a magic header, a version, then a
// sequence of {opcode, body} records ending in an EOF opcode.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// ErrParse wraps every snapshot parse failure: bad magic, a bad opcode in a
// position where none is allowed, truncated input, or an unsupported value
// type. A missing snapshot file is handled separately (see Load) and never
// produces ErrParse.
var ErrParse = errors.New("snapshot: parse error")

const (
	opAux       = 0xFA
	opResizeDB  = 0xFB
	opExpireMS  = 0xFC
	opExpireSec = 0xFD
	opSelectDB  = 0xFE
	opEOF       = 0xFF
)

// valueTypeString is the only value type this keyspace model supports;
// types 1-14 (list, set, sorted-set, hash, and their encoded variants) are
// rejected with ErrParse.
const valueTypeString = 0x00

// Entry is one key/value record recovered from a snapshot, ready to seed a
// keyspace.Keyspace.
type Entry struct {
	Key   string
	Value []byte
	// Deadline is the zero Time if the entry has no expiry.
	Deadline            time.Time
	HasAbsoluteDeadline bool
}

// Load reads and parses the snapshot at dir/dbfilename. A missing file is
// not an error: Load returns a nil slice and a nil error so the server
// starts with an empty keyspace. dir or dbfilename empty also yields
// (nil, nil), since the snapshot path is only defined when both are set.
func Load(dir, dbfilename string) ([]Entry, error) {
	if dir == "" || dbfilename == "" {
		return nil, nil
	}

	path := dir + string(os.PathSeparator) + dbfilename
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot: read %s: %w", path, err)
	}

	entries, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("snapshot: parse %s: %w", path, err)
	}
	return entries, nil
}

// Parse reads a full snapshot stream and returns every string-typed
// key/value record it contains, in file order.
func Parse(r io.Reader) ([]Entry, error) {
	if err := readMagicAndVersion(r); err != nil {
		return nil, err
	}

	var entries []Entry
	for {
		var opByte [1]byte
		if _, err := io.ReadFull(r, opByte[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: missing EOF opcode", ErrParse)
			}
			return nil, fmt.Errorf("%w: read opcode: %w", ErrParse, err)
		}

		switch opByte[0] {
		case opEOF:
			// An optional 8-byte CRC64 may follow; ignore whatever remains.
			return entries, nil

		case opAux:
			if _, _, err := readTwoStrings(r); err != nil {
				return nil, err
			}

		case opResizeDB:
			if _, err := readLengthInt(r); err != nil {
				return nil, fmt.Errorf("%w: RESIZE_DB hash table size: %w", ErrParse, err)
			}
			if _, err := readLengthInt(r); err != nil {
				return nil, fmt.Errorf("%w: RESIZE_DB expire hash table size: %w", ErrParse, err)
			}

		case opSelectDB:
			if _, err := readLengthInt(r); err != nil {
				return nil, fmt.Errorf("%w: SELECT_DB index: %w", ErrParse, err)
			}

		case opExpireMS:
			var ms [8]byte
			if _, err := io.ReadFull(r, ms[:]); err != nil {
				return nil, fmt.Errorf("%w: EXPIRE_MS timestamp: %w", ErrParse, err)
			}
			deadline := time.UnixMilli(int64(binary.LittleEndian.Uint64(ms[:])))
			e, err := readKeyValue(r)
			if err != nil {
				return nil, err
			}
			e.Deadline = deadline
			e.HasAbsoluteDeadline = true
			entries = append(entries, e)

		case opExpireSec:
			var sec [4]byte
			if _, err := io.ReadFull(r, sec[:]); err != nil {
				return nil, fmt.Errorf("%w: EXPIRE_S timestamp: %w", ErrParse, err)
			}
			deadline := time.Unix(int64(binary.LittleEndian.Uint32(sec[:])), 0)
			e, err := readKeyValue(r)
			if err != nil {
				return nil, err
			}
			e.Deadline = deadline
			e.HasAbsoluteDeadline = true
			entries = append(entries, e)

		default:
			// Not an opcode byte: it is the value-type byte of an
			// un-expiring key/value entry.
			e, err := readKeyValueOfType(r, opByte[0])
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	}
}

func readMagicAndVersion(r io.Reader) error {
	var header [9]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return fmt.Errorf("%w: read magic/version header: %w", ErrParse, err)
	}
	if string(header[:5]) != "REDIS" {
		return fmt.Errorf("%w: bad magic %q, want \"REDIS\"", ErrParse, header[:5])
	}
	return nil
}

func readTwoStrings(r io.Reader) (string, string, error) {
	a, err := readString(r)
	if err != nil {
		return "", "", err
	}
	b, err := readString(r)
	if err != nil {
		return "", "", err
	}
	return a, b, nil
}

// readKeyValue reads a value-type byte followed by key-string then
// value-string.
func readKeyValue(r io.Reader) (Entry, error) {
	var typ [1]byte
	if _, err := io.ReadFull(r, typ[:]); err != nil {
		return Entry{}, fmt.Errorf("%w: read value type: %w", ErrParse, err)
	}
	return readKeyValueOfType(r, typ[0])
}

// readKeyValueOfType reads key-string then value-string, given that typ has
// already been consumed from the stream.
func readKeyValueOfType(r io.Reader, typ byte) (Entry, error) {
	if typ != valueTypeString {
		return Entry{}, fmt.Errorf("%w: unsupported value type %#x (only string-typed values are supported)", ErrParse, typ)
	}

	key, err := readString(r)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: read key: %w", ErrParse, err)
	}
	value, err := readString(r)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: read value: %w", ErrParse, err)
	}
	return Entry{Key: key, Value: []byte(value)}, nil
}
