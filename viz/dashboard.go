// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides an ASCII overview of the crew book by country
package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mycrew/mycrew/models"
)

type DashboardStats struct {
	TotalContacts int
	Favorites     int
	WithVehicle   int
	Housed        int
	NoLocation    int

	// ByCountry counts contacts per country of their primary location.
	ByCountry []CountryStats
}

type CountryStats struct {
	Country string
	Count   int
}

func GenerateDashboardStats(contacts []models.Contact) *DashboardStats {
	stats := &DashboardStats{TotalContacts: len(contacts)}

	counts := make(map[string]int)
	for _, c := range contacts {
		if c.IsFavorite {
			stats.Favorites++
		}

		vehicle, housed := false, false
		for _, l := range c.Locations {
			vehicle = vehicle || l.HasVehicle
			housed = housed || l.IsHoused
		}
		if vehicle {
			stats.WithVehicle++
		}
		if housed {
			stats.Housed++
		}

		p := c.PrimaryLocation()
		if p == nil {
			stats.NoLocation++
			continue
		}
		counts[strings.TrimSpace(p.Country)]++
	}

	for country, n := range counts {
		stats.ByCountry = append(stats.ByCountry, CountryStats{Country: country, Count: n})
	}
	sort.Slice(stats.ByCountry, func(i, j int) bool {
		a, b := stats.ByCountry[i], stats.ByCountry[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Country < b.Country
	})
	return stats
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  MYCREW DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("CREW BY COUNTRY\n")
	renderCountries(&out, stats.ByCountry)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📇 %d contacts  ⭐ %d favorites  🚗 %d with vehicle  🏠 %d housed\n\n",
		stats.TotalContacts, stats.Favorites, stats.WithVehicle, stats.Housed))

	if stats.NoLocation > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		out.WriteString(fmt.Sprintf("  ⚠️  %d contacts - no primary work location\n", stats.NoLocation))
	}

	return out.String()
}

func renderCountries(out *strings.Builder, countries []CountryStats) {
	maxCount := 1
	for _, c := range countries {
		if c.Count > maxCount {
			maxCount = c.Count
		}
	}

	for _, c := range countries {
		// Calculate bar length (0-10 blocks)
		barLength := (c.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-13s %s  %2d\n", c.Country, bar, c.Count))
	}
}
