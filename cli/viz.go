// ABOUTME: Visualization CLI commands
// ABOUTME: Handles viz locations graph and dashboard commands
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/mycrew/mycrew/store"
	"github.com/mycrew/mycrew/viz"
)

// VizLocationsCommand renders the crew location graph.
func VizLocationsCommand(s store.Store, args []string) error {
	fs := newFlagSet("viz locations")
	output := fs.String("output", "", "Output file (default: stdout)")
	format := fs.String("format", "dot", "dot, svg or png")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var gvFormat graphviz.Format
	switch strings.ToLower(*format) {
	case "dot":
		gvFormat = graphviz.XDOT
	case "svg":
		gvFormat = graphviz.SVG
	case "png":
		gvFormat = graphviz.PNG
		if *output == "" {
			return fmt.Errorf("--output is required for png")
		}
	default:
		return fmt.Errorf("unknown format %q (want dot, svg or png)", *format)
	}

	contacts, err := s.GetAll(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	var w io.Writer = Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", *output, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	return viz.WriteLocationGraph(context.Background(), w, contacts, gvFormat)
}

// VizDashboardCommand prints crew statistics.
func VizDashboardCommand(s store.Store, args []string) error {
	fs := newFlagSet("viz dashboard")
	if err := fs.Parse(args); err != nil {
		return err
	}

	contacts, err := s.GetAll(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	fmt.Fprint(Stdout, viz.RenderDashboard(viz.GenerateDashboardStats(contacts)))
	return nil
}
