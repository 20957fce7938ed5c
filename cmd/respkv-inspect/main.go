package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mickamy/respkv/internal/inspector"
)

var version = "dev"

func main() {
	fs := flag.NewFlagSet("respkv-inspect", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "respkv-inspect — read-only live key browser for a running respd\n\nUsage:\n  respkv-inspect [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	addr := fs.String("addr", "127.0.0.1:6379", "respd address to connect to")
	showVersion := fs.Bool("version", false, "show version and exit")

	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("respkv-inspect %s\n", version)
		return
	}

	p := tea.NewProgram(inspector.New(*addr))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
