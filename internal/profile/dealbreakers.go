// internal/profile/dealbreakers.go
// Hard filters a user applies over lifestyle and physical attributes.
// A dimension with no configured values is disengaged and never filters.

package profile

import (
	"database/sql/driver"
	"encoding/json"
)

// Dealbreakers holds the per-dimension acceptable sets. Zero values mean
// the dimension is disengaged.
type Dealbreakers struct {
	AcceptableDrinking    []string `json:"acceptable_drinking,omitempty"`
	AcceptableSmoking     []string `json:"acceptable_smoking,omitempty"`
	AcceptableKidsStances []string `json:"acceptable_kids_stances,omitempty"`
	AcceptableLookingFor  []string `json:"acceptable_looking_for,omitempty"`
	MinHeightCm           int      `json:"min_height_cm,omitempty"`
	MaxHeightCm           int      `json:"max_height_cm,omitempty"`
	MaxAgeDifference      int      `json:"max_age_difference,omitempty"`
}

// Scan implements the sql.Scanner interface for Dealbreakers
func (d *Dealbreakers) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	if bytes, ok := value.([]byte); ok {
		return json.Unmarshal(bytes, d)
	}
	return nil
}

// Value implements the driver.Valuer interface for Dealbreakers
func (d Dealbreakers) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Engaged reports whether any dimension is active
func (d Dealbreakers) Engaged() bool {
	return len(d.AcceptableDrinking) > 0 ||
		len(d.AcceptableSmoking) > 0 ||
		len(d.AcceptableKidsStances) > 0 ||
		len(d.AcceptableLookingFor) > 0 ||
		d.MinHeightCm > 0 ||
		d.MaxHeightCm > 0 ||
		d.MaxAgeDifference > 0
}

// Accepts evaluates a candidate against the viewer's dealbreakers.
// A candidate that has not answered a field checked by an engaged
// dimension fails that dimension.
func (d Dealbreakers) Accepts(viewer, candidate *User) bool {
	if !acceptableValue(d.AcceptableDrinking, candidate.Drinking) {
		return false
	}
	if !acceptableValue(d.AcceptableSmoking, candidate.Smoking) {
		return false
	}
	if !acceptableValue(d.AcceptableKidsStances, candidate.KidsStance) {
		return false
	}
	if !acceptableValue(d.AcceptableLookingFor, candidate.LookingFor) {
		return false
	}

	if d.MinHeightCm > 0 || d.MaxHeightCm > 0 {
		if candidate.HeightCm == nil {
			return false
		}
		h := *candidate.HeightCm
		if d.MinHeightCm > 0 && h < d.MinHeightCm {
			return false
		}
		if d.MaxHeightCm > 0 && h > d.MaxHeightCm {
			return false
		}
	}

	if d.MaxAgeDifference > 0 {
		if viewer.Age == 0 || candidate.Age == 0 {
			return false
		}
		diff := viewer.Age - candidate.Age
		if diff < 0 {
			diff = -diff
		}
		if diff > d.MaxAgeDifference {
			return false
		}
	}

	return true
}

// acceptableValue checks one set-valued dimension. An empty set is
// disengaged; an engaged set rejects an unanswered value.
func acceptableValue(acceptable []string, value string) bool {
	if len(acceptable) == 0 {
		return true
	}
	if value == "" {
		return false
	}
	for _, v := range acceptable {
		if v == value {
			return true
		}
	}
	return false
}
