package resp_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/mickamy/respkv/internal/resp"
)

func encode(t *testing.T, v resp.Value) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := resp.NewEncoder(&buf).Encode(v); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return buf.Bytes()
}

func TestEncode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    resp.Value
		want string
	}{
		{"simple string", resp.NewSimpleString("OK"), "+OK\r\n"},
		{"integer", resp.NewInteger(1000), ":1000\r\n"},
		{"negative integer", resp.NewInteger(-42), ":-42\r\n"},
		{"error", resp.NewError("ERR unknown command"), "-ERR unknown command\r\n"},
		{"bulk string", resp.NewBulkString([]byte("foobar")), "$6\r\nfoobar\r\n"},
		{"empty bulk string", resp.NewBulkString([]byte{}), "$0\r\n\r\n"},
		{"null bulk string", resp.NewNullBulkString(), "$-1\r\n"},
		{"empty array", resp.NewArray(nil), "*0\r\n"},
		{"null array", resp.NewNullArray(), "*-1\r\n"},
		{
			"array of bulk strings",
			resp.NewArray([]resp.Value{
				resp.NewBulkString([]byte("foo")),
				resp.NewBulkString([]byte("bars")),
			}),
			"*2\r\n$3\r\nfoo\r\n$4\r\nbars\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := string(encode(t, tt.v)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want resp.Value
	}{
		{"simple string", "+hello\r\n", resp.NewSimpleString("hello")},
		{"integer", ":10\r\n", resp.NewInteger(10)},
		{"bulk string", "$5\r\nhello\r\n", resp.NewBulkString([]byte("hello"))},
		{"empty bulk string", "$0\r\n\r\n", resp.NewBulkString([]byte{})},
		{"null bulk string", "$-1\r\n", resp.NewNullBulkString()},
		{"empty array", "*0\r\n", resp.NewArray(nil)},
		{"null array", "*-1\r\n", resp.NewNullArray()},
		{
			"array of bulk strings",
			"*2\r\n$3\r\nfoo\r\n$4\r\nbars\r\n",
			resp.NewArray([]resp.Value{
				resp.NewBulkString([]byte("foo")),
				resp.NewBulkString([]byte("bars")),
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := resp.NewDecoder(bytes.NewReader([]byte(tt.in))).DecodeNext()
			if err != nil {
				t.Fatalf("DecodeNext: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// RoundTrip: decode(encode(v)) == v for every representable value.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	values := []resp.Value{
		resp.NewSimpleString("PONG"),
		resp.NewInteger(9223372036854775807),
		resp.NewInteger(-9223372036854775808),
		resp.NewBulkString([]byte("hello world")),
		resp.NewBulkString([]byte{}),
		resp.NewNullBulkString(),
		resp.NewArray([]resp.Value{
			resp.NewSimpleString("a"),
			resp.NewInteger(1),
			resp.NewBulkString([]byte("b")),
			resp.NewNullBulkString(),
		}),
		resp.NewArray(nil),
		resp.NewNullArray(),
	}

	for _, v := range values {
		wire := encode(t, v)
		got, err := resp.NewDecoder(bytes.NewReader(wire)).DecodeNext()
		if err != nil {
			t.Fatalf("DecodeNext(%v): %v", v, err)
		}
		if !got.Equal(v) {
			t.Errorf("round trip %v: got %v", v, got)
		}
	}
}

// Decoding is a prefix function: decoding encode(v) ‖ extra returns v and
// leaves extra untouched for the next DecodeNext call.
func TestDecodeIsAPrefixFunction(t *testing.T) {
	t.Parallel()

	v := resp.NewArray([]resp.Value{
		resp.NewBulkString([]byte("SET")),
		resp.NewBulkString([]byte("k")),
		resp.NewBulkString([]byte("v")),
	})
	extra := resp.NewSimpleString("PONG")

	wire := append(encode(t, v), encode(t, extra)...)
	dec := resp.NewDecoder(bytes.NewReader(wire))

	got, err := dec.DecodeNext()
	if err != nil {
		t.Fatalf("first DecodeNext: %v", err)
	}
	if !got.Equal(v) {
		t.Fatalf("first value: got %v, want %v", got, v)
	}

	got2, err := dec.DecodeNext()
	if err != nil {
		t.Fatalf("second DecodeNext: %v", err)
	}
	if !got2.Equal(extra) {
		t.Fatalf("second value: got %v, want %v", got2, extra)
	}
}

// Truncating a well-formed frame by any single byte must yield a malformed
// or EOF error, never a panic or a hang.
func TestDecodeRejectsTruncation(t *testing.T) {
	t.Parallel()

	full := encode(t, resp.NewArray([]resp.Value{
		resp.NewBulkString([]byte("GET")),
		resp.NewBulkString([]byte("foo")),
	}))

	for n := 1; n < len(full); n++ {
		truncated := full[:n]
		_, err := resp.NewDecoder(bytes.NewReader(truncated)).DecodeNext()
		if err == nil {
			t.Errorf("truncation to %d bytes: expected error, got nil", n)
			continue
		}
		if !errors.Is(err, resp.ErrMalformed) && !errors.Is(err, io.EOF) {
			t.Errorf("truncation to %d bytes: unexpected error type: %v", n, err)
		}
	}
}

func TestDecodeMalformedInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"bad prefix", "!foo\r\n"},
		{"bad CRLF after simple string", "+foo\r\r"},
		{"stray CR not followed by LF", "+ab\rXY\r\n"},
		{"non-decimal length", "$abc\r\n"},
		{"non-decimal integer", ":abc\r\n"},
		{"length overflows int64", "$99999999999999999999\r\n"},
		{"negative length other than -1", "$-2\r\n"},
		{"missing trailing CRLF on bulk payload", "$3\r\nfooXX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := resp.NewDecoder(bytes.NewReader([]byte(tt.in))).DecodeNext()
			if err == nil {
				t.Fatalf("expected error for %q", tt.in)
			}
		})
	}
}

func TestDecodeNextReturnsEOFAtCleanBoundary(t *testing.T) {
	t.Parallel()

	dec := resp.NewDecoder(bytes.NewReader(nil))
	_, err := dec.DecodeNext()
	if !errors.Is(err, io.EOF) {
		t.Fatalf("got %v, want io.EOF", err)
	}
}
