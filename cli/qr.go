// ABOUTME: QR share and scan CLI commands
// ABOUTME: Encodes contacts to QR codes, scans them back and imports the result
package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/mycrew/mycrew/models"
	"github.com/mycrew/mycrew/payload"
	"github.com/mycrew/mycrew/qr"
	"github.com/mycrew/mycrew/store"
	"github.com/mycrew/mycrew/sync"
)

// QRShareCommand encodes the contacts named by id into one QR code.
func QRShareCommand(s store.Store, qrSize int, args []string) error {
	fs := newFlagSet("qr share")
	output := fs.String("output", "", "Write a PNG to this file")
	size := fs.Int("size", qrSize, "PNG size in pixels")
	level := fs.String("level", "", "Error correction level L, M, Q or H (default: recommended)")
	raw := fs.Bool("raw", false, "Print the payload text instead of a QR code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ids := fs.Args()
	if err := payload.CheckBatch(len(ids)); err != nil {
		return err
	}

	contacts, err := loadContacts(s, ids)
	if err != nil {
		return err
	}

	text, err := payload.Encode(contacts)
	if err != nil {
		var capErr *payload.CapacityError
		if errors.As(err, &capErr) && capErr.SuggestedCount > 0 {
			zap.L().Info("qr payload over capacity", zap.Int("size", capErr.Size), zap.Int("suggested", capErr.SuggestedCount))
		}
		return err
	}

	est := payload.EstimateContacts(contacts)
	lvl := payload.Level(strings.ToUpper(*level))
	if lvl == "" {
		lvl = est.RenderLevel
	}

	switch {
	case *output != "":
		png, err := qr.Render(text, qr.RenderOptions{Size: *size, Level: lvl})
		if err != nil {
			return err
		}
		if err := os.WriteFile(*output, png, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", *output, err)
		}
		fmt.Fprintf(Stdout, "✓ QR code written: %s (%s)\n", *output, humanize.Bytes(uint64(len(png))))
	case !*raw && isTerminal(Stdout):
		art, err := qr.RenderTerminal(text, lvl)
		if err != nil {
			return err
		}
		fmt.Fprint(Stdout, art)
	default:
		fmt.Fprintln(Stdout, text)
		return nil
	}

	fmt.Fprintf(Stdout, "%d contact(s), payload %s\n", len(contacts), humanize.Bytes(uint64(len(text))))
	if !est.Feasible {
		fmt.Fprintln(Stdout, "⚠ this payload may not fit a QR code; share fewer contacts")
	}
	return nil
}

// QREstimateCommand prints the capacity estimate for a set of contacts.
func QREstimateCommand(s store.Store, args []string) error {
	fs := newFlagSet("qr estimate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	contacts, err := loadContacts(s, fs.Args())
	if err != nil {
		return err
	}

	est := payload.EstimateContacts(contacts)
	cmp := payload.Compare(contacts)

	fmt.Fprintf(Stdout, "Contacts:            %d\n", est.Count)
	fmt.Fprintf(Stdout, "Raw size:            %s\n", humanize.Bytes(uint64(est.RawBytes)))
	fmt.Fprintf(Stdout, "Estimated deflated:  %s\n", humanize.Bytes(uint64(est.EstimatedCompressed)))
	fmt.Fprintf(Stdout, "Measured deflated:   %s\n", humanize.Bytes(uint64(est.MeasuredCompressed)))
	for _, fit := range est.Levels {
		mark := "✗"
		if fit.Fits {
			mark = "✓"
		}
		fmt.Fprintf(Stdout, "  level %s  %s  (%s)\n", fit.Level, mark, humanize.Comma(int64(fit.Ceiling)))
	}
	if est.Feasible {
		fmt.Fprintf(Stdout, "Recommended level:   %s\n", est.RecommendedLevel)
		fmt.Fprintf(Stdout, "Render level:        %s\n", est.RenderLevel)
	} else {
		fmt.Fprintln(Stdout, "Does not fit any QR level")
	}
	fmt.Fprintf(Stdout, "Max batch (approx):  %d\n", est.MaxBatchSize)
	fmt.Fprintf(Stdout, "Short keys would save %.1f%%\n", cmp.ReductionPercent)
	return nil
}

// QRScanCommand reads a QR image or raw payload text and imports it.
func QRScanCommand(s store.Store, args []string) error {
	fs := newFlagSet("qr scan")
	text := fs.String("text", "", "Payload text read by another scanner")
	onDuplicate := fs.String("on-duplicate", "ask", "ask, merge, skip or add")
	dryRun := fs.Bool("dry-run", false, "Decode and show contacts without importing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	content := *text
	if content == "" {
		if fs.NArg() < 1 {
			return fmt.Errorf("an image file, - for stdin, or --text is required")
		}
		var err error
		if content, err = readScanInput(fs.Arg(0)); err != nil {
			return err
		}
	}

	result := payload.Decode(content)
	if !result.OK() {
		zap.L().Debug("scan rejected", zap.String("kind", result.Kind.String()), zap.Error(result.Err))
		return fmt.Errorf("%s", result.UserMessage())
	}
	fmt.Fprintf(Stdout, "%s\n", result.UserMessage())
	for i := range result.Contacts {
		fmt.Fprintf(Stdout, "  • %s\n", describe(&result.Contacts[i]))
	}
	if *dryRun {
		return nil
	}

	resolve, err := resolverFor(*onDuplicate)
	if err != nil {
		return err
	}

	summary, err := sync.NewImporter(s).Import(context.Background(), result.Contacts, resolve)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	for _, f := range summary.Failed {
		fmt.Fprintf(Stdout, "  ✗ %s: %v\n", f.Name, f.Err)
	}
	fmt.Fprintf(Stdout, "✓ %s\n", summary)
	return nil
}

func readScanInput(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	if isImage(data) {
		return qr.ScanReader(bytes.NewReader(data))
	}
	return strings.TrimSpace(string(data)), nil
}

func isImage(data []byte) bool {
	return bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) || bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff})
}

func resolverFor(policy string) (sync.Resolver, error) {
	if strings.EqualFold(policy, "ask") {
		return askResolver(bufio.NewReader(Stdin)), nil
	}
	choice, err := sync.ParseChoice(policy)
	if err != nil {
		return nil, err
	}
	return sync.Fixed(choice), nil
}

// askResolver prompts once per duplicate. End of input skips the rest.
func askResolver(in *bufio.Reader) sync.Resolver {
	return func(_ context.Context, d sync.Decision) (sync.Choice, error) {
		for {
			fmt.Fprintf(Stdout, "%s already exists. [m]erge, [s]kip, [a]dd or [q]uit? ", d.Existing.FullName())
			line, err := in.ReadString('\n')
			if err != nil && line == "" {
				fmt.Fprintln(Stdout)
				return sync.ChoiceSkip, nil
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "m", "merge", "":
				return sync.ChoiceMerge, nil
			case "s", "skip":
				return sync.ChoiceSkip, nil
			case "a", "add":
				return sync.ChoiceAdd, nil
			case "q", "quit":
				return 0, sync.ErrImportAborted
			}
		}
	}
}

func loadContacts(s store.Store, ids []string) ([]models.Contact, error) {
	contacts := make([]models.Contact, 0, len(ids))
	for _, id := range ids {
		c, err := s.Get(context.Background(), id)
		if err != nil {
			return nil, fmt.Errorf("contact %s: %w", id, err)
		}
		contacts = append(contacts, *c)
	}
	return contacts, nil
}

func describe(c *models.Contact) string {
	parts := []string{c.FullName()}
	if t := models.CanonicalJobTitles(*c); len(t) > 0 {
		parts = append(parts, strings.Join(t, ", "))
	}
	if city := c.City(); city != "" {
		parts = append(parts, city)
	}
	return strings.Join(parts, " · ")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
