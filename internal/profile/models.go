// internal/profile/models.go

package profile

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/TomShtern/Date-Program-sub007/internal/geo"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

// Account lifecycle states. Only active accounts take part in matching.
const (
	StatusIncomplete = "incomplete"
	StatusActive     = "active"
	StatusPaused     = "paused"
	StatusBanned     = "banned"
)

// GenderEveryone is the explicit open gender preference. Openness is
// always declared, never inferred from an empty list.
const GenderEveryone = "everyone"

// Lifestyle field values. An empty string means the user has not answered.
const (
	HabitNever     = "never"
	HabitSocially  = "socially"
	HabitRegularly = "regularly"

	KidsWantSomeday = "want_someday"
	KidsDontWant    = "dont_want"
	KidsHaveKids    = "have_kids"
	KidsOpen        = "open"

	LookingCasual    = "casual"
	LookingShortTerm = "short_term"
	LookingLongTerm  = "long_term"
	LookingMarriage  = "marriage"
	LookingUnsure    = "unsure"
)

// User is a member profile as seen by the matching pipeline
type User struct {
	ID          string     `json:"id" db:"id"`
	DisplayName string     `json:"display_name" db:"display_name"`
	Age         int        `json:"age" db:"age"`
	Gender      string     `json:"gender" db:"gender"`
	Bio         *string    `json:"bio,omitempty" db:"bio"`
	Photos      []string   `json:"photos" db:"photos"`
	Interests   []string   `json:"interests" db:"interests"`
	HeightCm    *int       `json:"height_cm,omitempty" db:"height_cm"`
	Location    *geo.Point `json:"location,omitempty"`

	// Lifestyle answers, empty when unanswered
	Drinking   string `json:"drinking,omitempty" db:"drinking"`
	Smoking    string `json:"smoking,omitempty" db:"smoking"`
	KidsStance string `json:"kids_stance,omitempty" db:"kids_stance"`
	LookingFor string `json:"looking_for,omitempty" db:"looking_for"`

	Pace PacePrefs `json:"pace" db:"pace"`

	Preferences  Preferences  `json:"preferences" db:"preferences"`
	Dealbreakers Dealbreakers `json:"dealbreakers" db:"dealbreakers"`

	Premium bool   `json:"premium" db:"premium"`
	Status  string `json:"status" db:"status"`

	LastActiveAt *time.Time `json:"last_active_at,omitempty" db:"last_active_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// Preferences controls who shows up in a user's candidate feed
type Preferences struct {
	MinAge        int      `json:"min_age"`
	MaxAge        int      `json:"max_age"`
	MaxDistanceKm float64  `json:"max_distance_km"`
	InterestedIn  []string `json:"interested_in"`
}

// Scan implements the sql.Scanner interface for Preferences
func (p *Preferences) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	if bytes, ok := value.([]byte); ok {
		return json.Unmarshal(bytes, p)
	}
	return nil
}

// Value implements the driver.Valuer interface for Preferences
func (p Preferences) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// WantsGender reports whether gender falls inside the user's preference.
// A missing gender or an empty preference list never matches.
func (p Preferences) WantsGender(gender string) bool {
	if gender == "" {
		return false
	}
	for _, g := range p.InterestedIn {
		if g == GenderEveryone || g == gender {
			return true
		}
	}
	return false
}

// Active reports whether the account takes part in matching
func (u *User) Active() bool {
	return u.Status == StatusActive
}

// IsBanned reports whether the account has been banned
func (u *User) IsBanned() bool {
	return u.Status == StatusBanned
}

// AgeRange returns the width of the preferred age window
func (p Preferences) AgeRange() int {
	if p.MaxAge <= p.MinAge {
		return 0
	}
	return p.MaxAge - p.MinAge
}

// LifestyleComplete reports whether all lifestyle questions are answered
func (u *User) LifestyleComplete() bool {
	return u.Drinking != "" && u.Smoking != "" && u.KidsStance != "" && u.LookingFor != ""
}

// Completeness scores how filled-in a profile is, in [0,1].
// Counted sections: bio, photos, interests, lifestyle, location.
func (u *User) Completeness() float64 {
	filled := 0
	if u.Bio != nil && *u.Bio != "" {
		filled++
	}
	if len(u.Photos) > 0 {
		filled++
	}
	if len(u.Interests) > 0 {
		filled++
	}
	if u.LifestyleComplete() {
		filled++
	}
	if u.Location != nil {
		filled++
	}
	return float64(filled) / 5.0
}

// KidsStancesCompatible reports whether two answered kids stances can coexist.
// OPEN pairs with anything; wanting kids someday pairs with already having them.
func KidsStancesCompatible(a, b string) bool {
	if a == b {
		return true
	}
	if a == KidsOpen || b == KidsOpen {
		return true
	}
	if (a == KidsWantSomeday && b == KidsHaveKids) || (a == KidsHaveKids && b == KidsWantSomeday) {
		return true
	}
	return false
}

// Pace preference values, one set per sub-dimension. Messaging frequency
// and first-date timing share the generic no-preference wildcard; the
// other two sub-dimensions carry their own.
const (
	PaceNoPreference = "no_preference"

	MessagingRarely     = "rarely"
	MessagingOften      = "often"
	MessagingConstantly = "constantly"

	FirstDateQuickly = "quickly"
	FirstDateFewDays = "few_days"
	FirstDateWeeks   = "weeks"
	FirstDateMonths  = "months"

	CommTextOnly        = "text_only"
	CommVoiceNotes      = "voice_notes"
	CommVideoCalls      = "video_calls"
	CommInPerson        = "in_person"
	CommMixOfEverything = "mix_of_everything"

	DepthSmallTalk     = "small_talk"
	DepthDeepChat      = "deep_chat"
	DepthExistential   = "existential"
	DepthDependsOnVibe = "depends_on_vibe"
)

// PacePrefs holds a user's communication cadence answers. All four
// sub-dimensions must be set before pace takes part in scoring.
type PacePrefs struct {
	MessagingFrequency string `json:"messaging_frequency,omitempty"`
	FirstDateTiming    string `json:"first_date_timing,omitempty"`
	CommunicationStyle string `json:"communication_style,omitempty"`
	ConversationDepth  string `json:"conversation_depth,omitempty"`
}

// Scan implements the sql.Scanner interface for PacePrefs
func (p *PacePrefs) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	if bytes, ok := value.([]byte); ok {
		return json.Unmarshal(bytes, p)
	}
	return nil
}

// Value implements the driver.Valuer interface for PacePrefs
func (p PacePrefs) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Complete reports whether every pace sub-dimension is answered
func (p PacePrefs) Complete() bool {
	return p.MessagingFrequency != "" && p.FirstDateTiming != "" &&
		p.CommunicationStyle != "" && p.ConversationDepth != ""
}

// Points per pace sub-dimension. Four sub-dimensions at 25 apiece put a
// perfect alignment at 100.
const (
	paceExactPoints    = 25
	paceAdjacentPoints = 15
	paceFarPoints      = 5
	paceWildcardPoints = 20
)

// Ordinal positions inside each pace sub-dimension, wildcards excluded
var (
	messagingOrder = map[string]int{
		MessagingRarely:     0,
		MessagingOften:      1,
		MessagingConstantly: 2,
	}
	firstDateOrder = map[string]int{
		FirstDateQuickly: 0,
		FirstDateFewDays: 1,
		FirstDateWeeks:   2,
		FirstDateMonths:  3,
	}
	commStyleOrder = map[string]int{
		CommTextOnly:   0,
		CommVoiceNotes: 1,
		CommVideoCalls: 2,
		CommInPerson:   3,
	}
	depthOrder = map[string]int{
		DepthSmallTalk:   0,
		DepthDeepChat:    1,
		DepthExistential: 2,
	}
)

// PaceAlignment scores how well two complete pace profiles line up, in
// [0,100]. Each sub-dimension compares ordinally: an exact match earns
// the most points, adjacent answers a bit less, distant answers almost
// nothing. A wildcard on either side fixes that sub-dimension at a
// neutral-high value. Returns ok=false when either profile is incomplete.
func PaceAlignment(a, b PacePrefs) (int, bool) {
	if !a.Complete() || !b.Complete() {
		return 0, false
	}

	points := paceDimPoints(a.MessagingFrequency, b.MessagingFrequency, messagingOrder, PaceNoPreference)
	points += paceDimPoints(a.FirstDateTiming, b.FirstDateTiming, firstDateOrder, PaceNoPreference)
	points += paceDimPoints(a.CommunicationStyle, b.CommunicationStyle, commStyleOrder, CommMixOfEverything)
	points += paceDimPoints(a.ConversationDepth, b.ConversationDepth, depthOrder, DepthDependsOnVibe)
	return points, true
}

func paceDimPoints(a, b string, order map[string]int, wildcard string) int {
	if a == wildcard || b == wildcard {
		return paceWildcardPoints
	}

	d := order[a] - order[b]
	if d < 0 {
		d = -d
	}
	switch d {
	case 0:
		return paceExactPoints
	case 1:
		return paceAdjacentPoints
	default:
		return paceFarPoints
	}
}
