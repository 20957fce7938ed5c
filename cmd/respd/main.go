package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/mickamy/respkv/internal/command"
	"github.com/mickamy/respkv/internal/config"
	"github.com/mickamy/respkv/internal/keyspace"
	"github.com/mickamy/respkv/internal/server"
	"github.com/mickamy/respkv/internal/snapshot"
)

var version = "dev"

func main() {
	fs := flag.NewFlagSet("respd", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "respd — in-memory key/value server speaking a RESP-compatible protocol\n\nUsage:\n  respd [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	addr := fs.String("addr", "127.0.0.1:6379", "listen address")
	dir := fs.String("dir", "", "snapshot directory (empty disables loading/serving a snapshot)")
	dbfilename := fs.String("dbfilename", "", "snapshot file name within -dir")
	showVersion := fs.Bool("version", false, "show version and exit")

	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("respd %s\n", version)
		return
	}

	cfg := config.Config{Addr: *addr, SnapshotDir: *dir, SnapshotFilename: *dbfilename}
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	entries, err := snapshot.Load(cfg.SnapshotDir, cfg.SnapshotFilename)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	ks := keyspace.New()
	for _, e := range entries {
		if e.HasAbsoluteDeadline {
			ks.Insert(e.Key, e.Value, keyspace.WithAbsoluteDeadline(e.Deadline))
		} else {
			ks.Insert(e.Key, e.Value)
		}
	}
	log.Printf("keyspace seeded with %d entries", len(entries))

	disp := command.New(ks, cfg)

	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}

	srv := server.New(lis, disp)
	log.Printf("respd listening on %s", lis.Addr())
	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	log.Printf("respd shut down cleanly")
	return nil
}
