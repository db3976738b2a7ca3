package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TomShtern/Date-Program-sub007/internal/geo"
)

func strPtr(s string) *string { return &s }

func TestCompletenessEmptyProfile(t *testing.T) {
	u := &User{ID: "u"}
	assert.Equal(t, 0.0, u.Completeness())
}

func TestCompletenessFullProfile(t *testing.T) {
	u := &User{
		ID:         "u",
		Bio:        strPtr("hello"),
		Photos:     []string{"a.jpg"},
		Interests:  []string{"hiking"},
		Drinking:   HabitSocially,
		Smoking:    HabitNever,
		KidsStance: KidsOpen,
		LookingFor: LookingLongTerm,
		Location:   &geo.Point{Lat: 1, Lon: 2},
	}
	assert.Equal(t, 1.0, u.Completeness())
}

func TestCompletenessPartialLifestyleDoesNotCount(t *testing.T) {
	u := &User{
		ID:       "u",
		Bio:      strPtr("hello"),
		Drinking: HabitNever,
	}
	// Only bio counts; lifestyle needs all four answers
	assert.InDelta(t, 0.2, u.Completeness(), 1e-9)
}

func TestKidsStancesCompatible(t *testing.T) {
	assert.True(t, KidsStancesCompatible(KidsDontWant, KidsDontWant))
	assert.True(t, KidsStancesCompatible(KidsOpen, KidsDontWant))
	assert.True(t, KidsStancesCompatible(KidsHaveKids, KidsOpen))
	assert.True(t, KidsStancesCompatible(KidsWantSomeday, KidsHaveKids))
	assert.True(t, KidsStancesCompatible(KidsHaveKids, KidsWantSomeday))
	assert.False(t, KidsStancesCompatible(KidsWantSomeday, KidsDontWant))
	assert.False(t, KidsStancesCompatible(KidsDontWant, KidsHaveKids))
}

func pacePrefs(freq, timing, style, depth string) PacePrefs {
	return PacePrefs{
		MessagingFrequency: freq,
		FirstDateTiming:    timing,
		CommunicationStyle: style,
		ConversationDepth:  depth,
	}
}

func TestPaceAlignmentPerfectMatch(t *testing.T) {
	p := pacePrefs(MessagingOften, FirstDateFewDays, CommTextOnly, DepthDeepChat)

	points, ok := PaceAlignment(p, p)
	assert.True(t, ok)
	assert.Equal(t, 100, points)
}

func TestPaceAlignmentOrdinalDistance(t *testing.T) {
	a := pacePrefs(MessagingRarely, FirstDateQuickly, CommTextOnly, DepthSmallTalk)

	// One adjacent answer drops that sub-dimension from 25 to 15
	adjacent := pacePrefs(MessagingOften, FirstDateQuickly, CommTextOnly, DepthSmallTalk)
	points, ok := PaceAlignment(a, adjacent)
	assert.True(t, ok)
	assert.Equal(t, 90, points)

	// Far apart on every sub-dimension
	far := pacePrefs(MessagingConstantly, FirstDateMonths, CommVideoCalls, DepthExistential)
	points, ok = PaceAlignment(a, far)
	assert.True(t, ok)
	assert.Equal(t, 20, points)
}

func TestPaceAlignmentWildcards(t *testing.T) {
	a := pacePrefs(MessagingRarely, FirstDateQuickly, CommTextOnly, DepthSmallTalk)
	b := pacePrefs(PaceNoPreference, PaceNoPreference, CommMixOfEverything, DepthDependsOnVibe)

	points, ok := PaceAlignment(a, b)
	assert.True(t, ok)
	assert.Equal(t, 80, points)

	// Wildcard works from either side
	points, ok = PaceAlignment(b, a)
	assert.True(t, ok)
	assert.Equal(t, 80, points)
}

func TestPaceAlignmentIncompleteProfile(t *testing.T) {
	complete := pacePrefs(MessagingOften, FirstDateWeeks, CommVoiceNotes, DepthDeepChat)
	partial := PacePrefs{MessagingFrequency: MessagingOften}

	_, ok := PaceAlignment(complete, partial)
	assert.False(t, ok)

	_, ok = PaceAlignment(PacePrefs{}, complete)
	assert.False(t, ok)
}

func TestUserAccountStatus(t *testing.T) {
	assert.True(t, (&User{Status: StatusActive}).Active())
	assert.False(t, (&User{Status: StatusPaused}).Active())
	assert.False(t, (&User{Status: StatusIncomplete}).Active())
	assert.False(t, (&User{Status: StatusBanned}).Active())
	assert.True(t, (&User{Status: StatusBanned}).IsBanned())
	assert.False(t, (&User{Status: StatusActive}).IsBanned())
}

func TestPreferencesWantsGender(t *testing.T) {
	picky := Preferences{InterestedIn: []string{"woman", "nonbinary"}}
	assert.True(t, picky.WantsGender("woman"))
	assert.False(t, picky.WantsGender("man"))

	open := Preferences{InterestedIn: []string{GenderEveryone}}
	assert.True(t, open.WantsGender("man"))
	assert.True(t, open.WantsGender("woman"))

	// Openness is declared, never inferred from missing data
	unset := Preferences{}
	assert.False(t, unset.WantsGender("woman"))
	assert.False(t, picky.WantsGender(""))
	assert.False(t, open.WantsGender(""))
}
