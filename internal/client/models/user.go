// Package models defines the records exchanged with the directory service
// and held by the client.
package models

import (
	"github.com/dmitrijs2005/lifelink/internal/geo"
)

// Role is the account kind. It decides which dashboard a user lands on.
type Role string

const (
	RoleDonor   Role = "donor"
	RoleMedical Role = "medical"
)

func (r Role) Valid() bool {
	return r == RoleDonor || r == RoleMedical
}

// GeoPoint is a GeoJSON point as the directory service stores it:
// coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from c.
func NewGeoPoint(c geo.Coordinate) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: [2]float64{c.Longitude, c.Latitude}}
}

// Coordinate returns the point as a lat/lon coordinate.
func (p *GeoPoint) Coordinate() geo.Coordinate {
	if p == nil {
		return geo.Coordinate{}
	}
	return geo.Coordinate{Latitude: p.Coordinates[1], Longitude: p.Coordinates[0]}
}

// IsSet reports whether p holds a non-sentinel position.
func (p *GeoPoint) IsSet() bool {
	return p != nil && !p.Coordinate().IsZero()
}

// UserRecord is the account as returned by the directory service.
type UserRecord struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Role        Role      `json:"role"`
	BloodGroup  string    `json:"bloodGroup,omitempty"`
	IsAvailable *bool     `json:"isAvailable,omitempty"`
	Location    *GeoPoint `json:"location,omitempty"`
}

// Clone returns a deep copy so snapshots never share pointers with the
// canonical record.
func (u UserRecord) Clone() UserRecord {
	c := u
	if u.IsAvailable != nil {
		v := *u.IsAvailable
		c.IsAvailable = &v
	}
	if u.Location != nil {
		loc := *u.Location
		c.Location = &loc
	}
	return c
}

// Available reports the availability flag, treating unknown as false.
func (u UserRecord) Available() bool {
	return u.IsAvailable != nil && *u.IsAvailable
}

// UserPatch is a shallow partial update. Nil fields are left untouched.
// Only values the server has confirmed may be put in a patch.
type UserPatch struct {
	Name        *string
	Email       *string
	Phone       *string
	BloodGroup  *string
	IsAvailable *bool
	Location    *GeoPoint
}

// Apply merges p into u and returns the result; u is not modified.
func (p UserPatch) Apply(u UserRecord) UserRecord {
	out := u.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Email != nil {
		out.Email = *p.Email
	}
	if p.Phone != nil {
		out.Phone = *p.Phone
	}
	if p.BloodGroup != nil {
		out.BloodGroup = *p.BloodGroup
	}
	if p.IsAvailable != nil {
		v := *p.IsAvailable
		out.IsAvailable = &v
	}
	if p.Location != nil {
		loc := *p.Location
		out.Location = &loc
	}
	return out
}

// PatchFromUser builds a patch carrying every mutable field of u.
func PatchFromUser(u UserRecord) UserPatch {
	p := UserPatch{
		Name:       &u.Name,
		Email:      &u.Email,
		Phone:      &u.Phone,
		BloodGroup: &u.BloodGroup,
	}
	if u.IsAvailable != nil {
		v := *u.IsAvailable
		p.IsAvailable = &v
	}
	if u.Location != nil {
		loc := *u.Location
		p.Location = &loc
	}
	return p
}

// Credential is the bearer token together with the user it was issued for.
type Credential struct {
	Token string     `json:"token"`
	User  UserRecord `json:"user"`
}
