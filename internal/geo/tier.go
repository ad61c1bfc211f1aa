package geo

import "strconv"

// Tier buckets a donor by distance from the query center. Cards and map
// markers both style themselves from the tier, so the thresholds live
// only here.
type Tier string

const (
	TierNear     Tier = "near"
	TierModerate Tier = "moderate"
	TierFar      Tier = "far"
)

const (
	NearThresholdMeters     = 1000
	ModerateThresholdMeters = 3000
)

// ClassifyDistance maps a distance in meters to its tier. Breakpoints are
// inclusive: exactly 1000 m is near, exactly 3000 m is moderate.
func ClassifyDistance(distanceMeters float64) Tier {
	switch {
	case distanceMeters <= NearThresholdMeters:
		return TierNear
	case distanceMeters <= ModerateThresholdMeters:
		return TierModerate
	default:
		return TierFar
	}
}

// Color is the accent color for the tier: affirmative, cautionary, urgent.
func (t Tier) Color() string {
	switch t {
	case TierNear:
		return "#16a34a"
	case TierModerate:
		return "#d97706"
	default:
		return "#dc2626"
	}
}

// Background is the pale variant used behind distance badges.
func (t Tier) Background() string {
	switch t {
	case TierNear:
		return "#ecfdf5"
	case TierModerate:
		return "#fffbeb"
	default:
		return "#fef2f2"
	}
}

// Legend is the short range description shown in map legends.
func (t Tier) Legend() string {
	switch t {
	case TierNear:
		return "< 1 km"
	case TierModerate:
		return "1-3 km"
	default:
		return "> 3 km"
	}
}

// Rank orders tiers from nearest to farthest.
func (t Tier) Rank() int {
	switch t {
	case TierNear:
		return 0
	case TierModerate:
		return 1
	default:
		return 2
	}
}

// FormatDistance renders meters as "800m" below one kilometre and "4.2km"
// from there on.
func FormatDistance(m float64) string {
	if m < 1000 {
		return strconv.FormatFloat(m, 'f', 0, 64) + "m"
	}
	return strconv.FormatFloat(m/1000, 'f', 1, 64) + "km"
}
