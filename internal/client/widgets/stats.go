package widgets

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/lifelink/internal/client/models"
)

// Tile is one counter on the medical dashboard.
type Tile struct {
	Label string
	Value string
}

// StatTiles lays out the headline counters followed by the available
// donors of every blood group, in the canonical group order.
func StatTiles(s models.DonorStats) []Tile {
	tiles := []Tile{
		{Label: "Total Donors", Value: strconv.Itoa(s.TotalDonors)},
		{Label: "Available Donors", Value: strconv.Itoa(s.TotalAvailable)},
	}

	byGroup := make(map[string]models.BloodGroupStats, len(s.BloodGroupBreakdown))
	for _, g := range s.BloodGroupBreakdown {
		byGroup[g.BloodGroup] = g
	}
	for _, bg := range models.BloodGroups {
		g, ok := byGroup[bg]
		if !ok {
			continue
		}
		tiles = append(tiles, Tile{Label: bg, Value: fmt.Sprintf("%d available", g.Available)})
	}
	return tiles
}

func RenderStats(w io.Writer, s models.DonorStats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, t := range StatTiles(s) {
		fmt.Fprintf(tw, "%s\t%s\n", t.Label, t.Value)
	}
	return tw.Flush()
}
