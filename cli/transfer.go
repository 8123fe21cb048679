// ABOUTME: Export and import CLI commands
// ABOUTME: Moves the crew book to and from JSON, CSV and vCard files
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/mycrew/mycrew/store"
	"github.com/mycrew/mycrew/sync"
	"github.com/mycrew/mycrew/transfer"
)

// ExportCommand writes every contact to a file or stdout.
func ExportCommand(s store.Store, args []string) error {
	fs := newFlagSet("export")
	output := fs.String("output", "", "Output file (default: stdout)")
	format := fs.String("format", "", "json, csv or vcard (default: from file extension, else json)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := pickFormat(*format, *output)
	if err != nil {
		return err
	}

	contacts, err := s.GetAll(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	var w io.Writer = Stdout
	if *output != "" {
		file, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", *output, err)
		}
		defer func() { _ = file.Close() }()
		w = file
	}

	if err := transfer.Export(w, f, contacts); err != nil {
		return err
	}
	if *output != "" {
		fmt.Fprintf(Stdout, "✓ Exported %d contact(s) to %s\n", len(contacts), *output)
	}
	return nil
}

// ImportCommand reads contacts from a file and merges them into the book.
func ImportCommand(s store.Store, args []string) error {
	fs := newFlagSet("import")
	format := fs.String("format", "", "json, csv or vcard (default: from file extension)")
	onDuplicate := fs.String("on-duplicate", "merge", "merge, skip or add")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("input file is required")
	}
	path := fs.Arg(0)

	f, err := pickFormat(*format, path)
	if err != nil {
		return err
	}
	choice, err := sync.ParseChoice(*onDuplicate)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	contacts, err := transfer.Import(file, f)
	if err != nil {
		return err
	}

	summary, err := sync.NewImporter(s).Import(context.Background(), contacts, sync.Fixed(choice))
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	zap.L().Info("file imported", zap.String("path", path), zap.String("format", string(f)), zap.Stringer("summary", summary))

	for _, fail := range summary.Failed {
		fmt.Fprintf(Stdout, "  ✗ %s: %v\n", fail.Name, fail.Err)
	}
	fmt.Fprintf(Stdout, "✓ %s\n", summary)
	return nil
}

func pickFormat(explicit, filename string) (transfer.Format, error) {
	if explicit != "" {
		return transfer.ParseFormat(explicit)
	}
	if filename == "" {
		return transfer.FormatJSON, nil
	}
	return transfer.DetectFormat(filename)
}
