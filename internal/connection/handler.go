// Package connection implements the per-connection decode → dispatch →
// encode loop. Each accepted transport is handled by exactly one Handle
// call, which owns that transport's read and write halves exclusively; the
// dispatcher's keyspace is shared (reference-counted) across every call.
package connection

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/mickamy/respkv/internal/command"
	"github.com/mickamy/respkv/internal/resp"
)

// Handle drives one connection's request/response loop until the transport
// closes or a transport/frame error terminates it. Replies are emitted in
// the exact order their requests were decoded.
//
// A decode-level malformed frame or any I/O error ends the loop and the
// error is returned so the caller can close the transport. An invalid
// command (per command.ErrInvalid) does not end the loop: a protocol error
// reply is sent and the connection stays open.
func Handle(conn net.Conn, disp *command.Dispatcher) error {
	dec := resp.NewDecoder(conn)
	enc := resp.NewEncoder(conn)

	for {
		req, err := dec.DecodeNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil // clean close between requests
			}
			return fmt.Errorf("connection: decode: %w", err)
		}

		reply, err := disp.Dispatch(req)
		if err != nil {
			if errors.Is(err, command.ErrInvalid) {
				if encErr := enc.Encode(errorReply(err)); encErr != nil {
					return fmt.Errorf("connection: write error reply: %w", encErr)
				}
				continue
			}
			return fmt.Errorf("connection: dispatch: %w", err)
		}

		if err := enc.Encode(reply); err != nil {
			return fmt.Errorf("connection: encode: %w", err)
		}
	}
}

// errorReply renders a dispatch error as a RESP error value: "-ERR
// <message>\r\n" with any embedded CR/LF flattened to spaces, since a
// simple/error string may not contain one.
func errorReply(err error) resp.Value {
	msg := strings.ReplaceAll(strings.ReplaceAll(err.Error(), "\r", " "), "\n", " ")
	return resp.NewError("ERR " + msg)
}
