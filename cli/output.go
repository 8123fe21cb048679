// ABOUTME: Shared plumbing for CLI commands
// ABOUTME: Holds the output streams and the location flag parser
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mycrew/mycrew/models"
)

// Stdout and Stdin are swapped out by tests.
var (
	Stdout io.Writer = os.Stdout
	Stdin  io.Reader = os.Stdin
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ", ") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// locationList collects --location values written as
// Country[/Region][:flags], where flags are letters among r (local
// resident), v (vehicle), l (housed) and p (primary).
type locationList []models.WorkLocation

func (l *locationList) String() string {
	labels := make([]string, len(*l))
	for i, loc := range *l {
		labels[i] = loc.Label()
	}
	return strings.Join(labels, ", ")
}

func (l *locationList) Set(v string) error {
	loc, err := parseLocation(v)
	if err != nil {
		return err
	}
	*l = append(*l, loc)
	return nil
}

func parseLocation(v string) (models.WorkLocation, error) {
	place, flags, _ := strings.Cut(v, ":")
	country, region, _ := strings.Cut(place, "/")

	loc := models.WorkLocation{
		Country: strings.TrimSpace(country),
		Region:  strings.TrimSpace(region),
	}
	if loc.Country == "" {
		return loc, fmt.Errorf("location %q: %w", v, models.ErrMissingCountry)
	}

	for _, f := range strings.ToLower(flags) {
		switch f {
		case 'r':
			loc.IsLocalResident = true
		case 'v':
			loc.HasVehicle = true
		case 'l':
			loc.IsHoused = true
		case 'p':
			loc.IsPrimary = true
		default:
			return loc, fmt.Errorf("location %q: unknown flag %q (want r, v, l or p)", v, f)
		}
	}
	return loc, nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
