package widgets

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/lifelink/internal/client/models"
	"github.com/dmitrijs2005/lifelink/internal/geo"
)

// RenderProfile writes the signed-in user's record. Donor-only fields are
// shown for donors.
func RenderProfile(w io.Writer, u models.UserRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\t%s\n", u.Name)
	fmt.Fprintf(tw, "Email\t%s\n", u.Email)
	fmt.Fprintf(tw, "Role\t%s\n", u.Role)

	phone := u.Phone
	if phone == "" {
		phone = "-"
	}
	fmt.Fprintf(tw, "Phone\t%s\n", phone)

	if u.Role == models.RoleDonor {
		fmt.Fprintf(tw, "Blood group\t%s\n", u.BloodGroup)
		status := statusOffline
		if u.Available() {
			status = statusReady
		}
		fmt.Fprintf(tw, "Status\t%s\n", status)
	}

	location := "not set"
	if u.Location.IsSet() {
		c := u.Location.Coordinate()
		location = fmt.Sprintf("%s, %s", geo.FormatComponent(c.Latitude), geo.FormatComponent(c.Longitude))
	}
	fmt.Fprintf(tw, "Location\t%s\n", location)
	return tw.Flush()
}
