// Package resp implements the streaming decoder/encoder for the RESP-family
// wire protocol: a one-byte type prefix followed by a CRLF-terminated body.
package resp

import "fmt"

// Type identifies the wire representation of a Value.
type Type int

const (
	// TypeNull is the type of the internal Null sentinel. The decoder never
	// produces it: a decoded null bulk string or null array keeps its
	// TypeBulkString or TypeArray type and reports IsNull.
	TypeNull Type = iota
	TypeSimpleString
	TypeError
	TypeInteger
	TypeBulkString
	TypeArray
)

// Value is the tagged union that is the universal currency on the wire.
type Value struct {
	typ   Type
	str   string  // SimpleString text
	num   int64   // Integer value
	bulk  []byte  // BulkString payload; nil distinguishes a null bulk from an empty one
	isSet bool    // BulkString: whether bulk is present (vs. null)
	arr   []Value // Array elements; nil distinguishes a null array from an empty one
	arrOK bool    // Array: whether arr is present (vs. null)
}

// NewSimpleString builds a SimpleString value. Callers must ensure text
// contains no CR/LF; the encoder does not re-validate this.
func NewSimpleString(text string) Value {
	return Value{typ: TypeSimpleString, str: text}
}

// NewError builds an Error value: a protocol error reply rendered on the
// wire as "-<msg>\r\n", used to tell a client a request failed without
// closing the connection.
func NewError(msg string) Value {
	return Value{typ: TypeError, str: msg}
}

// NewInteger builds an Integer value.
func NewInteger(n int64) Value {
	return Value{typ: TypeInteger, num: n}
}

// NewBulkString builds a non-null BulkString value.
func NewBulkString(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{typ: TypeBulkString, bulk: b, isSet: true}
}

// NewNullBulkString builds the null-bulk-string sentinel ($-1).
func NewNullBulkString() Value {
	return Value{typ: TypeBulkString, isSet: false}
}

// NewArray builds a non-null Array value.
func NewArray(elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{typ: TypeArray, arr: elems, arrOK: true}
}

// NewNullArray builds the null-array sentinel (*-1).
func NewNullArray() Value {
	return Value{typ: TypeArray, arrOK: false}
}

// Null returns the internal-only null sentinel, for use where no concrete
// value applies. The decoder does not return it.
func Null() Value {
	return Value{typ: TypeNull}
}

// Type reports the value's wire type.
func (v Value) Type() Type {
	return v.typ
}

// IsNull reports whether v is a null bulk string, a null array, or the
// internal Null sentinel.
func (v Value) IsNull() bool {
	switch v.typ {
	case TypeNull:
		return true
	case TypeBulkString:
		return !v.isSet
	case TypeArray:
		return !v.arrOK
	default:
		return false
	}
}

// Str returns the text of a SimpleString or the payload of a non-null
// BulkString as a string, and whether the value had string content.
func (v Value) Str() (string, bool) {
	switch v.typ {
	case TypeSimpleString, TypeError:
		return v.str, true
	case TypeBulkString:
		if !v.isSet {
			return "", false
		}
		return string(v.bulk), true
	default:
		return "", false
	}
}

// Bytes returns the payload of a non-null BulkString.
func (v Value) Bytes() ([]byte, bool) {
	if v.typ != TypeBulkString || !v.isSet {
		return nil, false
	}
	return v.bulk, true
}

// Int returns the numeric value of an Integer.
func (v Value) Int() (int64, bool) {
	if v.typ != TypeInteger {
		return 0, false
	}
	return v.num, true
}

// Elements returns the elements of a non-null Array.
func (v Value) Elements() ([]Value, bool) {
	if v.typ != TypeArray || !v.arrOK {
		return nil, false
	}
	return v.arr, true
}

// Equal reports whether v and other have the same wire representation.
// Intended for tests; not used on any hot path.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeNull:
		return true
	case TypeSimpleString, TypeError:
		return v.str == other.str
	case TypeInteger:
		return v.num == other.num
	case TypeBulkString:
		if v.isSet != other.isSet {
			return false
		}
		return !v.isSet || string(v.bulk) == string(other.bulk)
	case TypeArray:
		if v.arrOK != other.arrOK {
			return false
		}
		if !v.arrOK {
			return true
		}
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) String() string {
	switch v.typ {
	case TypeNull:
		return "Null"
	case TypeSimpleString:
		return fmt.Sprintf("SimpleString(%q)", v.str)
	case TypeError:
		return fmt.Sprintf("Error(%q)", v.str)
	case TypeInteger:
		return fmt.Sprintf("Integer(%d)", v.num)
	case TypeBulkString:
		if !v.isSet {
			return "BulkString(nil)"
		}
		return fmt.Sprintf("BulkString(%q)", v.bulk)
	case TypeArray:
		if !v.arrOK {
			return "Array(nil)"
		}
		return fmt.Sprintf("Array(%v)", v.arr)
	default:
		return "Value(?)"
	}
}
