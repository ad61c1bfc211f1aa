package models

import "github.com/dmitrijs2005/lifelink/internal/geo"

// DonorResult is one row of a proximity search. DistanceMeters is computed
// by the server relative to the query center.
type DonorResult struct {
	ID             string    `json:"_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	BloodGroup     string    `json:"bloodGroup"`
	IsAvailable    bool      `json:"isAvailable"`
	Location       *GeoPoint `json:"location,omitempty"`
	DistanceMeters float64   `json:"distanceInMeters"`
}

// DistanceKm is the display distance.
func (d DonorResult) DistanceKm() float64 {
	return d.DistanceMeters / 1000
}

// Tier classifies the donor by distance.
func (d DonorResult) Tier() geo.Tier {
	return geo.ClassifyDistance(d.DistanceMeters)
}

// Position returns the donor coordinate; ok is false when the server sent
// no location.
func (d DonorResult) Position() (c geo.Coordinate, ok bool) {
	if d.Location == nil {
		return geo.Coordinate{}, false
	}
	return d.Location.Coordinate(), true
}

// CloneDonors copies a result slice, including the location pointers.
func CloneDonors(in []DonorResult) []DonorResult {
	if in == nil {
		return nil
	}
	out := make([]DonorResult, len(in))
	for i, d := range in {
		out[i] = d
		if d.Location != nil {
			loc := *d.Location
			out[i].Location = &loc
		}
	}
	return out
}

// DonorStats are the aggregate counters shown on the medical dashboard.
type DonorStats struct {
	TotalDonors         int               `json:"totalDonors"`
	TotalAvailable      int               `json:"totalAvailable"`
	BloodGroupBreakdown []BloodGroupStats `json:"bloodGroupBreakdown,omitempty"`
}

type BloodGroupStats struct {
	BloodGroup string `json:"bloodGroup"`
	Total      int    `json:"total"`
	Available  int    `json:"available"`
}
