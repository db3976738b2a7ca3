package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestDealbreakersDisengagedAcceptsAnyone(t *testing.T) {
	var d Dealbreakers
	assert.False(t, d.Engaged())

	viewer := &User{ID: "v", Age: 30}
	blank := &User{ID: "c"}
	assert.True(t, d.Accepts(viewer, blank))
}

func TestDealbreakersLifestyleSets(t *testing.T) {
	d := Dealbreakers{AcceptableDrinking: []string{HabitNever, HabitSocially}}
	viewer := &User{ID: "v"}

	assert.True(t, d.Engaged())
	assert.True(t, d.Accepts(viewer, &User{Drinking: HabitSocially}))
	assert.False(t, d.Accepts(viewer, &User{Drinking: HabitRegularly}))
}

func TestDealbreakersRelationshipGoal(t *testing.T) {
	d := Dealbreakers{AcceptableLookingFor: []string{LookingLongTerm, LookingMarriage}}
	viewer := &User{ID: "v"}

	assert.True(t, d.Accepts(viewer, &User{LookingFor: LookingMarriage}))
	assert.False(t, d.Accepts(viewer, &User{LookingFor: LookingCasual}))
}

func TestDealbreakersMissingAnswerFailsEngagedDimension(t *testing.T) {
	d := Dealbreakers{AcceptableSmoking: []string{HabitNever}}
	viewer := &User{ID: "v"}

	// Unanswered smoking is not given the benefit of the doubt
	assert.False(t, d.Accepts(viewer, &User{}))
}

func TestDealbreakersHeightRange(t *testing.T) {
	d := Dealbreakers{MinHeightCm: 160, MaxHeightCm: 190}
	viewer := &User{ID: "v"}

	assert.True(t, d.Accepts(viewer, &User{HeightCm: intPtr(175)}))
	assert.True(t, d.Accepts(viewer, &User{HeightCm: intPtr(160)}))
	assert.False(t, d.Accepts(viewer, &User{HeightCm: intPtr(155)}))
	assert.False(t, d.Accepts(viewer, &User{HeightCm: intPtr(195)}))
}

func TestDealbreakersMissingHeightFails(t *testing.T) {
	d := Dealbreakers{MinHeightCm: 160}
	viewer := &User{ID: "v"}

	assert.False(t, d.Accepts(viewer, &User{}))
}

func TestDealbreakersMaxAgeDifference(t *testing.T) {
	d := Dealbreakers{MaxAgeDifference: 5}
	viewer := &User{ID: "v", Age: 30}

	assert.True(t, d.Accepts(viewer, &User{Age: 35}))
	assert.True(t, d.Accepts(viewer, &User{Age: 25}))
	assert.False(t, d.Accepts(viewer, &User{Age: 36}))
	assert.False(t, d.Accepts(viewer, &User{Age: 0}))
}

func TestDealbreakersMultipleDimensionsAllMustPass(t *testing.T) {
	d := Dealbreakers{
		AcceptableKidsStances: []string{KidsOpen, KidsWantSomeday},
		MinHeightCm:           170,
	}
	viewer := &User{ID: "v"}

	ok := &User{KidsStance: KidsOpen, HeightCm: intPtr(180)}
	wrongStance := &User{KidsStance: KidsDontWant, HeightCm: intPtr(180)}
	tooShort := &User{KidsStance: KidsOpen, HeightCm: intPtr(160)}

	assert.True(t, d.Accepts(viewer, ok))
	assert.False(t, d.Accepts(viewer, wrongStance))
	assert.False(t, d.Accepts(viewer, tooShort))
}
