// ABOUTME: Entry point for the mycrew CLI, MCP server, web server and TUI
// ABOUTME: Routes to commands based on arguments after loading config and logger
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mycrew/mycrew/cli"
	"github.com/mycrew/mycrew/config"
	"github.com/mycrew/mycrew/logger"
	"github.com/mycrew/mycrew/store"
)

const version = "0.2.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config file (default: ~/.config/mycrew/config.yaml)")
	dbPath := flag.String("db-path", "", "SQLite database path (default: ~/.local/share/mycrew/crew.db)")
	backend := flag.String("backend", "", "Contact store: sqlite or badger")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error")
	initOnly := flag.Bool("init", false, "Initialize the contact store and exit")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("mycrew version %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	flush, err := logger.Install(cfg.LogLevel, cfg.LogFormat, config.AppName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer flush()

	args := flag.Args()
	if len(args) == 0 && !*initOnly {
		printUsage()
		return
	}

	s, err := store.Open(cfg)
	if err != nil {
		zap.L().Fatal("failed to open contact store", zap.String("backend", cfg.Backend), zap.Error(err))
	}
	defer func() { _ = s.Close() }()
	zap.L().Debug("contact store opened", zap.String("backend", cfg.Backend), zap.String("path", cfg.DBPath))

	if *initOnly {
		fmt.Println("Contact store initialized")
		return
	}

	if err := run(s, cfg, args); err != nil {
		zap.L().Error("command failed", zap.String("command", args[0]), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		_ = s.Close()
		flush()
		os.Exit(1)
	}
}

func run(s store.Store, cfg *config.Config, args []string) error {
	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "mcp":
		return cli.MCPCommand(s, version)
	case "web":
		return cli.WebCommand(s, cfg.WebAddr, cfg.QRSize, commandArgs)
	case "tui":
		return cli.TUICommand(s)
	case "export":
		return cli.ExportCommand(s, commandArgs)
	case "import":
		return cli.ImportCommand(s, commandArgs)

	case "crew":
		if len(commandArgs) == 0 {
			printUsage()
			return fmt.Errorf("crew requires a subcommand")
		}
		sub, subArgs := commandArgs[0], commandArgs[1:]
		switch sub {
		case "add-contact":
			return cli.AddContactCommand(s, subArgs)
		case "list-contacts":
			return cli.ListContactsCommand(s, subArgs)
		case "delete-contact":
			return cli.DeleteContactCommand(s, subArgs)
		case "favorite":
			return cli.FavoriteCommand(s, subArgs)
		}
		printUsage()
		return fmt.Errorf("unknown crew command: %s", sub)

	case "qr":
		if len(commandArgs) == 0 {
			printUsage()
			return fmt.Errorf("qr requires a subcommand")
		}
		sub, subArgs := commandArgs[0], commandArgs[1:]
		switch sub {
		case "share":
			return cli.QRShareCommand(s, cfg.QRSize, subArgs)
		case "scan":
			return cli.QRScanCommand(s, subArgs)
		case "estimate":
			return cli.QREstimateCommand(s, subArgs)
		}
		printUsage()
		return fmt.Errorf("unknown qr command: %s", sub)

	case "viz":
		if len(commandArgs) == 0 {
			printUsage()
			return fmt.Errorf("viz requires a subcommand")
		}
		sub, subArgs := commandArgs[0], commandArgs[1:]
		switch sub {
		case "locations":
			return cli.VizLocationsCommand(s, subArgs)
		case "dashboard":
			return cli.VizDashboardCommand(s, subArgs)
		}
		printUsage()
		return fmt.Errorf("unknown viz command: %s", sub)
	}

	printUsage()
	return fmt.Errorf("unknown command: %s", command)
}

func printUsage() {
	fmt.Printf(`mycrew v%s - crew contact book with QR sharing

USAGE:
  mycrew [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config file (default: ~/.config/mycrew/config.yaml)
  --db-path <path>       SQLite database path (default: ~/.local/share/mycrew/crew.db)
  --backend <name>       Contact store: sqlite (default) or badger
  --log-level <level>    debug, info, warn or error
  --init                 Initialize the contact store and exit

COMMANDS:
  crew                   Manage contacts
  qr                     Share and scan contacts by QR code
  export / import        Move contacts to and from JSON, CSV or vCard files
  viz                    Visualization commands
  tui                    Interactive terminal interface
  web                    Share server with a contact list and QR codes
  mcp                    Start MCP server for agents

CREW COMMANDS:
  mycrew crew add-contact       Add a new contact
    --first <name>                First name (required)
    --last <name>                 Last name
    --title <title>               Job title (repeatable, up to 3)
    --phone <phone>               Phone number
    --email <email>               Email address
    --notes <notes>               Private notes (never shared)
    --location <loc>              Country[/Region][:rvlp] (repeatable)
                                  r=local resident v=vehicle l=housed p=primary
    --favorite                    Mark as favorite

  mycrew crew list-contacts     List contacts
    --query <text>                Search names, titles, phone, email and places
    --favorites                   Only favorites
    --limit <n>                   Max results (default: 50)

  mycrew crew delete-contact <id>
  mycrew crew favorite [--off] <id>

QR COMMANDS:
  mycrew qr share <id>...       Share 1 to 10 contacts
    --output <file.png>           Write a PNG instead of printing
    --size <px>                   PNG size (default: 256)
    --level <L|M|Q|H>             Error correction (default: recommended)
    --raw                         Print the payload text

  mycrew qr scan <file|->       Import contacts from a QR image or payload text
    --text <payload>              Payload read by another scanner
    --on-duplicate <policy>       ask (default), merge, skip or add
    --dry-run                     Show contacts without importing

  mycrew qr estimate <id>...    Show QR capacity for a set of contacts

FILE COMMANDS:
  mycrew export [--format json|csv|vcard] [--output <file>]
  mycrew import [--format json|csv|vcard] [--on-duplicate merge|skip|add] <file>

VIZ COMMANDS:
  mycrew viz locations [--format dot|svg|png] [--output <file>]
  mycrew viz dashboard

`, version)
}
