package models

import (
	"github.com/dmitrijs2005/lifelink/internal/apperror"
	"github.com/dmitrijs2005/lifelink/internal/geo"
)

const (
	MinRadiusMeters     = 1000
	MaxRadiusMeters     = 10000
	RadiusStepMeters    = 1000
	DefaultRadiusMeters = 5000
)

// SearchQuery is built fresh for every dispatched search and never
// modified afterwards.
type SearchQuery struct {
	BloodGroup   string
	Center       geo.Coordinate
	RadiusMeters int
}

// ValidateRadius checks the 1000..10000 m range and the 1000 m step.
func ValidateRadius(m int) error {
	if m < MinRadiusMeters || m > MaxRadiusMeters || m%RadiusStepMeters != 0 {
		return apperror.Validation("radius", "Radius must be 1-10 km in 1 km steps.")
	}
	return nil
}

// Validate reports the first reason q may not be dispatched.
func (q SearchQuery) Validate() error {
	if q.BloodGroup == "" {
		return apperror.Validation("bloodGroup", "Select a blood group first.")
	}
	if !ValidBloodGroup(q.BloodGroup) {
		return apperror.Validation("bloodGroup", "Unknown blood group.")
	}
	if q.Center.IsZero() {
		return apperror.Validation("center", "Set a center point first.")
	}
	if err := q.Center.Validate(); err != nil {
		return apperror.Validation("center", err.Error())
	}
	return ValidateRadius(q.RadiusMeters)
}
