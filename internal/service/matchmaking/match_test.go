package matchmaking

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"github.com/sevenpm/date-backend/internal/db"
)

func fixtureProfile(mut func(*db.Profile)) *db.Profile {
	p := &db.Profile{
		UserID: "a", Age: 30, Gender: "female",
		HomeLocation:        "Carlsbad",
		InterestedLocations: datatypes.NewJSONSlice([]string{"Carlsbad", "Oceanside"}),
		DesiredGenders:      datatypes.NewJSONSlice([]string{"male"}),
		DesiredAgeMin:       28, DesiredAgeMax: 40,
	}
	if mut != nil {
		mut(p)
	}
	return p
}

func fixtureCounterpart(mut func(*db.Profile)) *db.Profile {
	p := &db.Profile{
		UserID: "b", Age: 32, Gender: "male",
		HomeLocation:        "Oceanside",
		InterestedLocations: datatypes.NewJSONSlice([]string{"Carlsbad"}),
		DesiredGenders:      datatypes.NewJSONSlice([]string{"female"}),
		DesiredAgeMin:       25, DesiredAgeMax: 35,
	}
	if mut != nil {
		mut(p)
	}
	return p
}

func TestMutualMatch(t *testing.T) {
	a := fixtureProfile(nil)
	b := fixtureCounterpart(nil)
	assert.True(t, mutualMatch(a, b))

	// One failing leg in either direction kills the pairing.
	assert.False(t, mutualMatch(a, fixtureCounterpart(func(p *db.Profile) { p.Age = 45 })),
		"candidate outside seeker's age range")
	assert.False(t, mutualMatch(a, fixtureCounterpart(func(p *db.Profile) { p.DesiredAgeMax = 29 })),
		"seeker outside candidate's age range")
	assert.False(t, mutualMatch(a, fixtureCounterpart(func(p *db.Profile) {
		p.InterestedLocations = datatypes.NewJSONSlice([]string{"Del Mar"})
	})), "candidate not interested in seeker's home")
	assert.False(t, mutualMatch(a, fixtureCounterpart(func(p *db.Profile) { p.HomeLocation = "Del Mar" })),
		"seeker not interested in candidate's home")
	assert.False(t, mutualMatch(a, fixtureCounterpart(func(p *db.Profile) {
		p.DesiredGenders = datatypes.NewJSONSlice([]string{"male"})
	})), "seeker's gender not desired by candidate")
}

func TestPickRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	assert.Nil(t, pickRandom(r, nil))

	candidates := []db.Profile{{UserID: "x"}, {UserID: "y"}, {UserID: "z"}}
	picked := map[string]bool{}
	for i := 0; i < 100; i++ {
		picked[pickRandom(r, candidates).UserID] = true
	}
	// All candidates are reachable.
	assert.Len(t, picked, 3)
}
