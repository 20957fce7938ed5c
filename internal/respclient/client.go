// Package respclient is a minimal client for the wire protocol implemented
// by internal/resp and internal/connection, used by the inspector tool to
// talk to a running respd as an ordinary client would.
package respclient

import (
	"fmt"
	"net"

	"github.com/mickamy/respkv/internal/resp"
)

// Client is a single connection to a respd instance. It is not safe for
// concurrent use: one in-flight Do call must complete before the next
// begins, same as the server's own per-connection loop.
type Client struct {
	conn net.Conn
	dec  *resp.Decoder
	enc  *resp.Encoder
}

// Dial opens a connection to addr.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("respclient: dial %s: %w", addr, err)
	}
	return &Client{
		conn: conn,
		dec:  resp.NewDecoder(conn),
		enc:  resp.NewEncoder(conn),
	}, nil
}

// Do sends a command array built from args and returns the decoded reply.
func (c *Client) Do(args ...string) (resp.Value, error) {
	elems := make([]resp.Value, len(args))
	for i, a := range args {
		elems[i] = resp.NewBulkString([]byte(a))
	}
	if err := c.enc.Encode(resp.NewArray(elems)); err != nil {
		return resp.Value{}, fmt.Errorf("respclient: write %v: %w", args, err)
	}
	reply, err := c.dec.DecodeNext()
	if err != nil {
		return resp.Value{}, fmt.Errorf("respclient: read reply to %v: %w", args, err)
	}
	return reply, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
