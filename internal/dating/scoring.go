// internal/dating/scoring.go
// Weighted-dimension compatibility scoring. Every dimension returns a
// value in [0,1]; the scorer combines them with validated weights into
// an integer score in [0,100].

package dating

import (
	"fmt"
	"math"
	"time"

	"github.com/TomShtern/Date-Program-sub007/internal/config"
	"github.com/TomShtern/Date-Program-sub007/internal/geo"
	"github.com/TomShtern/Date-Program-sub007/internal/profile"
)

const weightTolerance = 0.001

// Input carries everything the dimensions score over. LikeGap is the
// time between the two reciprocal likes and stays zero outside match
// creation, where the latency dimension falls back to neutral.
type Input struct {
	Viewer    *profile.User
	Candidate *profile.User
	LikeGap   time.Duration
}

// Dimension is one named, weighted scoring axis
type Dimension struct {
	Name   string
	Weight float64
	Score  func(in Input) float64
}

// Scorer combines dimension scores into one compatibility value
type Scorer struct {
	dims []Dimension
}

// NewScorer validates the dimension set: every weight positive, weights
// summing to 1.0 within tolerance.
func NewScorer(dims []Dimension) (*Scorer, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("scorer needs at least one dimension")
	}

	sum := 0.0
	for _, d := range dims {
		if d.Weight <= 0 {
			return nil, fmt.Errorf("dimension %q has non-positive weight %.3f", d.Name, d.Weight)
		}
		if d.Score == nil {
			return nil, fmt.Errorf("dimension %q has no score function", d.Name)
		}
		sum += d.Weight
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return nil, fmt.Errorf("dimension weights must sum to 1.0, got %.3f", sum)
	}

	return &Scorer{dims: dims}, nil
}

// Score returns the weighted compatibility of a pair as an integer in
// [0,100].
func (s *Scorer) Score(in Input) int {
	total := 0.0
	for _, d := range s.dims {
		total += d.Weight * clamp01(d.Score(in))
	}

	score := int(math.Round(clamp01(total) * 100))
	if score > 100 {
		score = 100
	}
	return score
}

// Breakdown returns the per-dimension scores, for explanations and metrics
func (s *Scorer) Breakdown(in Input) map[string]float64 {
	out := make(map[string]float64, len(s.dims))
	for _, d := range s.dims {
		out[d.Name] = clamp01(d.Score(in))
	}
	return out
}

// NewQualityScorer builds the match-quality configuration
func NewQualityScorer(cfg *config.Config) (*Scorer, error) {
	return NewScorer([]Dimension{
		{Name: "distance", Weight: cfg.QualityDistanceWeight, Score: scoreDistanceFunc(cfg.DefaultMaxDistanceKm)},
		{Name: "age", Weight: cfg.QualityAgeWeight, Score: scoreAgeFunc(cfg.AgeSimilarityYears)},
		{Name: "interests", Weight: cfg.QualityInterestsWeight, Score: scoreInterests},
		{Name: "lifestyle", Weight: cfg.QualityLifestyleWeight, Score: scoreLifestyle},
		{Name: "pace", Weight: cfg.QualityPaceWeight, Score: scorePace},
		{Name: "response_latency", Weight: cfg.QualityLatencyWeight, Score: scoreResponseLatency},
	})
}

// NewStandoutScorer builds the standout-ranking configuration
func NewStandoutScorer(cfg *config.Config) (*Scorer, error) {
	return NewScorer([]Dimension{
		{Name: "distance", Weight: cfg.StandoutDistanceWeight, Score: scoreDistanceFunc(cfg.DefaultMaxDistanceKm)},
		{Name: "age", Weight: cfg.StandoutAgeWeight, Score: scoreAgeFunc(cfg.AgeSimilarityYears)},
		{Name: "interests", Weight: cfg.StandoutInterestsWeight, Score: scoreInterests},
		{Name: "lifestyle", Weight: cfg.StandoutLifestyleWeight, Score: scoreLifestyle},
		{Name: "completeness", Weight: cfg.StandoutCompletenessWeight, Score: scoreCompleteness},
		{Name: "activity_recency", Weight: cfg.StandoutRecencyWeight, Score: scoreActivityRecency},
	})
}

// Dimension implementations

// scoreDistanceFunc maps distance linearly onto [0,1] against the
// viewer's max-distance preference: 1.0 within a kilometer, 0.0 at the
// limit. Viewers without a distance preference fall back to the default
// maximum; unknown locations score the 0.5 neutral.
func scoreDistanceFunc(defaultMaxKm float64) func(in Input) float64 {
	return func(in Input) float64 {
		d, ok := geo.DistanceBetween(in.Viewer.Location, in.Candidate.Location)
		if !ok {
			return 0.5
		}
		if d <= 1 {
			return 1.0
		}

		maxKm := in.Viewer.Preferences.MaxDistanceKm
		if maxKm <= 0 {
			maxKm = defaultMaxKm
		}
		if d >= maxKm {
			return 0.0
		}
		return 1.0 - d/maxKm
	}
}

// scoreAgeFunc rewards small age gaps. Gaps inside the similarity
// threshold are perfect; beyond that the score decays against the
// average preferred age range.
func scoreAgeFunc(similarYears int) func(in Input) float64 {
	return func(in Input) float64 {
		a, b := in.Viewer, in.Candidate
		if a.Age == 0 || b.Age == 0 {
			return 0.5
		}

		diff := float64(a.Age - b.Age)
		if diff < 0 {
			diff = -diff
		}
		if diff <= float64(similarYears) {
			return 1.0
		}

		avgRange := float64(a.Preferences.AgeRange()+b.Preferences.AgeRange()) / 2.0
		if avgRange == 0 {
			return 1.0
		}
		return math.Max(0, 1.0-diff/avgRange)
	}
}

// scoreInterests measures overlap relative to the smaller interest list.
// Nobody listing interests is neutral; only one side listing is a weak
// signal of mismatch.
func scoreInterests(in Input) float64 {
	a, b := in.Viewer, in.Candidate
	if len(a.Interests) == 0 && len(b.Interests) == 0 {
		return 0.5
	}
	if len(a.Interests) == 0 || len(b.Interests) == 0 {
		return 0.3
	}

	shared := len(sharedInterests(a.Interests, b.Interests))

	smaller := len(a.Interests)
	if len(b.Interests) < smaller {
		smaller = len(b.Interests)
	}
	return float64(shared) / float64(smaller)
}

// sharedInterests returns the interests both lists contain, in the
// first list's order.
func sharedInterests(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, interest := range b {
		set[interest] = true
	}

	shared := []string{}
	for _, interest := range a {
		if set[interest] {
			shared = append(shared, interest)
		}
	}
	return shared
}

// scoreLifestyle averages per-field agreement over the fields both users
// answered. No comparable field is neutral.
func scoreLifestyle(in Input) float64 {
	a, b := in.Viewer, in.Candidate
	total, compared := 0.0, 0

	if a.Drinking != "" && b.Drinking != "" {
		compared++
		if a.Drinking == b.Drinking {
			total += 1.0
		}
	}
	if a.Smoking != "" && b.Smoking != "" {
		compared++
		if a.Smoking == b.Smoking {
			total += 1.0
		}
	}
	if a.KidsStance != "" && b.KidsStance != "" {
		compared++
		if profile.KidsStancesCompatible(a.KidsStance, b.KidsStance) {
			total += 1.0
		}
	}
	if a.LookingFor != "" && b.LookingFor != "" {
		compared++
		if a.LookingFor == b.LookingFor {
			total += 1.0
		}
	}

	if compared == 0 {
		return 0.5
	}
	return total / float64(compared)
}

// scorePace scores communication-pace alignment across the four pace
// sub-dimensions. Incomplete pace answers on either side are neutral.
func scorePace(in Input) float64 {
	points, ok := profile.PaceAlignment(in.Viewer.Pace, in.Candidate.Pace)
	if !ok {
		return 0.5
	}
	return float64(points) / 100.0
}

// scoreResponseLatency tiers the pair by how quickly the second like
// followed the first. Zero means the gap is unknown.
func scoreResponseLatency(in Input) float64 {
	if in.LikeGap <= 0 {
		return 0.5
	}
	return latencyTier(in.LikeGap)
}

func latencyTier(d time.Duration) float64 {
	switch {
	case d < time.Hour:
		return 1.0
	case d < 24*time.Hour:
		return 0.9
	case d < 72*time.Hour:
		return 0.7
	case d < 168*time.Hour:
		return 0.5
	case d < 720*time.Hour:
		return 0.3
	default:
		return 0.1
	}
}

// scoreCompleteness rewards candidates with filled-in profiles
func scoreCompleteness(in Input) float64 {
	return in.Candidate.Completeness()
}

// scoreActivityRecency rewards candidates seen recently
func scoreActivityRecency(in Input) float64 {
	if in.Candidate.LastActiveAt == nil {
		return 0.3
	}

	since := time.Since(*in.Candidate.LastActiveAt)
	switch {
	case since < 24*time.Hour:
		return 1.0
	case since < 72*time.Hour:
		return 0.8
	case since < 168*time.Hour:
		return 0.5
	case since < 720*time.Hour:
		return 0.2
	default:
		return 0.05
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Highlight thresholds
const (
	maxHighlights     = 5
	nearbyKm          = 5.0
	closeKm           = 15.0
	similarAgeYears   = 2
	paceSyncPoints    = 95
	paceGoodPoints    = 80
	quickLikeGap      = 24 * time.Hour
	nearbyStandoutKm  = 10.0
	manySharedMinimum = 3
)

// Highlights builds the short human-readable reasons shown next to a
// score, first match wins, capped at five.
func Highlights(in Input) []string {
	a, b := in.Viewer, in.Candidate
	out := []string{}

	if d, ok := geo.DistanceBetween(a.Location, b.Location); ok {
		if d < nearbyKm {
			out = append(out, fmt.Sprintf("Lives nearby (%.1f km away)", d))
		} else if d < closeKm {
			out = append(out, fmt.Sprintf("%.0f km away", d))
		}
	}

	if shared := sharedInterests(a.Interests, b.Interests); len(shared) == 1 {
		out = append(out, "You both enjoy "+shared[0])
	} else if len(shared) > 1 {
		out = append(out, fmt.Sprintf("You share %d interests", len(shared)))
	}

	out = append(out, lifestyleHighlights(a, b)...)

	if points, ok := profile.PaceAlignment(a.Pace, b.Pace); ok {
		if points >= paceSyncPoints {
			out = append(out, "Total pace sync")
		} else if points >= paceGoodPoints {
			out = append(out, "Great communication sync")
		}
	}

	if in.LikeGap > 0 && in.LikeGap < quickLikeGap {
		out = append(out, "Quick mutual interest")
	}

	if a.Age > 0 && b.Age > 0 {
		diff := a.Age - b.Age
		if diff < 0 {
			diff = -diff
		}
		if diff <= similarAgeYears {
			out = append(out, "Similar age")
		}
	}

	if len(out) > maxHighlights {
		out = out[:maxHighlights]
	}
	return out
}

func lifestyleHighlights(a, b *profile.User) []string {
	out := []string{}

	if a.Smoking != "" && a.Smoking == b.Smoking {
		if a.Smoking == profile.HabitNever {
			out = append(out, "Both non-smokers")
		}
	}
	if a.Drinking != "" && a.Drinking == b.Drinking {
		if a.Drinking == profile.HabitNever {
			out = append(out, "Neither drinks")
		} else if a.Drinking == profile.HabitSocially {
			out = append(out, "Both social drinkers")
		}
	}
	if a.KidsStance != "" && b.KidsStance != "" {
		if a.KidsStance == b.KidsStance {
			out = append(out, "Same stance on kids")
		} else if profile.KidsStancesCompatible(a.KidsStance, b.KidsStance) {
			out = append(out, "Compatible on kids")
		}
	}
	if a.LookingFor != "" && a.LookingFor == b.LookingFor {
		out = append(out, "Same relationship goals")
	}

	return out
}
