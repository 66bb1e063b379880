package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/mrlokans/kindle-notion/internal/cli"
	"github.com/mrlokans/kindle-notion/internal/config"
	"github.com/mrlokans/kindle-notion/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// Command is a CLI subcommand with its own flag set.
type Command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	var cmd Command
	switch command {
	case "parse":
		cmd = cli.NewParseCommand()
	case "sync":
		cmd = cli.NewSyncCommand()
	case "mark":
		cmd = cli.NewMarkCommand()
	case "version":
		fmt.Printf("kindle-notion %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve     Start the HTTP server, scheduler and watcher (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  parse     Parse a clippings file and print the clips grouped by book\n")
	fmt.Fprintf(os.Stderr, "  sync      Publish new clips to Notion and mark the clippings file\n")
	fmt.Fprintf(os.Stderr, "  mark      Mark every clip in the clippings file as synced\n")
	fmt.Fprintf(os.Stderr, "  version   Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
