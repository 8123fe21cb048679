// ABOUTME: Crew location graph generation with graphviz
// ABOUTME: Links countries to regions to the contacts working there
package viz

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/mycrew/mycrew/models"
)

// GenerateLocationGraph returns the crew location graph as DOT source.
func GenerateLocationGraph(contacts []models.Contact) (string, error) {
	var buf bytes.Buffer
	if err := WriteLocationGraph(context.Background(), &buf, contacts, graphviz.XDOT); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteLocationGraph renders the graph in format (graphviz.XDOT, graphviz.SVG, graphviz.PNG).
// Edges to a contact's primary location are solid, to other locations dashed.
func WriteLocationGraph(ctx context.Context, w io.Writer, contacts []models.Contact, format graphviz.Format) error {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetLabel("Crew locations")
	graph.SetRankDir(cgraph.LRRank)

	countries := make(map[string]*cgraph.Node)
	regions := make(map[string]*cgraph.Node)

	countryNode := func(name string) (*cgraph.Node, error) {
		key := strings.ToLower(strings.TrimSpace(name))
		if n, ok := countries[key]; ok {
			return n, nil
		}
		n, err := graph.CreateNodeByName("country_" + key)
		if err != nil {
			return nil, fmt.Errorf("failed to create country node: %w", err)
		}
		n.SetLabel(strings.TrimSpace(name))
		n.SetShape("box")
		n.SetStyle("filled")
		n.SetFillColor("lightblue")
		countries[key] = n
		return n, nil
	}

	// areaNode returns the region node, or the country node when the
	// location has no region.
	areaNode := func(loc models.WorkLocation) (*cgraph.Node, error) {
		country, err := countryNode(loc.Country)
		if err != nil {
			return nil, err
		}
		region := strings.TrimSpace(loc.Region)
		if region == "" {
			return country, nil
		}

		key := strings.ToLower(strings.TrimSpace(loc.Country)) + "/" + strings.ToLower(region)
		if n, ok := regions[key]; ok {
			return n, nil
		}
		n, err := graph.CreateNodeByName("region_" + key)
		if err != nil {
			return nil, fmt.Errorf("failed to create region node: %w", err)
		}
		n.SetLabel(region)
		n.SetShape("ellipse")
		n.SetStyle("filled")
		n.SetFillColor("lightyellow")
		if _, err := graph.CreateEdgeByName("", country, n); err != nil {
			return nil, fmt.Errorf("failed to create edge: %w", err)
		}
		regions[key] = n
		return n, nil
	}

	for i, c := range sortedByName(contacts) {
		if len(c.Locations) == 0 {
			continue
		}

		node, err := graph.CreateNodeByName(fmt.Sprintf("contact_%d", i))
		if err != nil {
			return fmt.Errorf("failed to create contact node: %w", err)
		}
		label := c.FullName()
		if titles := models.CanonicalJobTitles(c); len(titles) > 0 {
			label += "\n" + strings.Join(titles, ", ")
		}
		node.SetLabel(label)
		node.SetShape("note")
		if c.IsFavorite {
			node.SetStyle("filled")
			node.SetFillColor("gold")
		}

		primary := c.PrimaryLocation()
		for j := range c.Locations {
			loc := c.Locations[j]
			if strings.TrimSpace(loc.Country) == "" {
				continue
			}
			area, err := areaNode(loc)
			if err != nil {
				return err
			}
			edge, err := graph.CreateEdgeByName("", area, node)
			if err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
			if primary != nil && &c.Locations[j] == primary {
				edge.SetStyle("solid")
				edge.SetPenWidth(2)
			} else {
				edge.SetStyle("dashed")
			}
			if loc.HasVehicle {
				edge.SetLabel("véhiculé")
			}
		}
	}

	if err := gv.Render(ctx, graph, format, w); err != nil {
		return fmt.Errorf("failed to render graph: %w", err)
	}
	return nil
}

func sortedByName(contacts []models.Contact) []models.Contact {
	out := append([]models.Contact(nil), contacts...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].FullName()) < strings.ToLower(out[j].FullName())
	})
	return out
}
