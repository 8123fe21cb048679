// ABOUTME: File import and export of the contact book
// ABOUTME: Picks JSON, CSV or vCard by file extension
package transfer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mycrew/mycrew/models"
)

type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatVCard Format = "vcard"
)

// DetectFormat maps a file extension to a format.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".vcf", ".vcard":
		return FormatVCard, nil
	default:
		return "", fmt.Errorf("unsupported file type %q (want .json, .csv or .vcf)", filepath.Ext(filename))
	}
}

// ParseFormat accepts a format name as typed on the command line.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "vcard", "vcf":
		return FormatVCard, nil
	default:
		return "", fmt.Errorf("unknown format %q", name)
	}
}

func Export(w io.Writer, format Format, contacts []models.Contact) error {
	switch format {
	case FormatJSON:
		return ExportJSON(w, contacts)
	case FormatCSV:
		return ExportCSV(w, contacts)
	case FormatVCard:
		return ExportVCard(w, contacts)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func Import(r io.Reader, format Format) ([]models.Contact, error) {
	switch format {
	case FormatJSON:
		return ImportJSON(r)
	case FormatCSV:
		return ImportCSV(r)
	case FormatVCard:
		return ImportVCard(r)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// parseFlag reads the boolean spellings found in hand-edited files.
func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oui", "true", "1", "yes", "x":
		return true
	}
	return false
}
