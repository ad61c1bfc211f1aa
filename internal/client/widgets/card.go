// Package widgets renders session and search state as terminal text.
package widgets

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/lifelink/internal/client/models"
	"github.com/dmitrijs2005/lifelink/internal/geo"
)

const (
	statusReady   = "Ready to Donate"
	statusOffline = "Currently Offline"
	privatePhone  = "Secure / Private"

	directionsBase = "https://www.google.com/maps/dir/?api=1&destination="
)

// DonorCard is the display form of one search result.
type DonorCard struct {
	Record        string
	Name          string
	BloodGroup    string
	Distance      string
	Tier          geo.Tier
	Color         string
	Background    string
	Status        string
	Phone         string
	CallLink      string
	DirectionsURL string
}

// NewDonorCard builds the card for the result at position index (zero
// based) in the list.
func NewDonorCard(index int, d models.DonorResult) DonorCard {
	tier := d.Tier()
	c := DonorCard{
		Record:     fmt.Sprintf("Record #%03d", index+1),
		Name:       d.Name,
		BloodGroup: d.BloodGroup,
		Distance:   geo.FormatDistance(d.DistanceMeters),
		Tier:       tier,
		Color:      tier.Color(),
		Background: tier.Background(),
		Status:     statusOffline,
		Phone:      privatePhone,
	}
	if d.IsAvailable {
		c.Status = statusReady
	}
	if phone := strings.TrimSpace(d.Phone); phone != "" {
		c.Phone = phone
		c.CallLink = "tel:" + phone
	}
	if pos, ok := d.Position(); ok {
		c.DirectionsURL = DirectionsURL(pos)
	}
	return c
}

// DirectionsURL links to turn-by-turn directions to c.
func DirectionsURL(c geo.Coordinate) string {
	return directionsBase +
		strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// Render writes the card as an indented block.
func (c DonorCard) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s (%s)\n", c.Record, c.Name, c.BloodGroup)
	fmt.Fprintf(tw, "  Distance\t%s [%s]\n", c.Distance, c.Tier)
	fmt.Fprintf(tw, "  Status\t%s\n", c.Status)
	fmt.Fprintf(tw, "  Phone\t%s\n", c.Phone)
	if c.CallLink != "" {
		fmt.Fprintf(tw, "  Call\t%s\n", c.CallLink)
	}
	if c.DirectionsURL != "" {
		fmt.Fprintf(tw, "  Directions\t%s\n", c.DirectionsURL)
	}
	return tw.Flush()
}

// RenderResults writes one summary row per donor followed by the tier
// legend. An empty slice prints a single "no donors" line.
func RenderResults(w io.Writer, results []models.DonorResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No donors found in this radius.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tGROUP\tDISTANCE\tTIER\tSTATUS\tPHONE")
	for i, d := range results {
		c := NewDonorCard(i, d)
		fmt.Fprintf(tw, "%03d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, c.Name, c.BloodGroup, c.Distance, c.Tier, c.Status, c.Phone)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return RenderLegend(w)
}

// RenderLegend prints the distance tiers with their colors.
func RenderLegend(w io.Writer) error {
	var parts []string
	for _, t := range []geo.Tier{geo.TierNear, geo.TierModerate, geo.TierFar} {
		parts = append(parts, fmt.Sprintf("%s %s (%s)", t, t.Legend(), t.Color()))
	}
	_, err := fmt.Fprintln(w, "Legend: "+strings.Join(parts, " | "))
	return err
}
