package matchmaking

import (
	"math/rand"

	"github.com/sevenpm/date-backend/internal/db"
)

// accepts reports whether a's stated criteria are satisfied by b:
// b's gender is one a desires, b's age lies in a's desired range, and b
// lists a's home among the locations they are interested in.
//
// The location leg is deliberately asymmetric (a's home against b's
// interest set); mutuality comes from checking both directions.
func accepts(a, b *db.Profile) bool {
	if !containsString(a.DesiredGenders, b.Gender) {
		return false
	}
	if b.Age < a.DesiredAgeMin || b.Age > a.DesiredAgeMax {
		return false
	}
	return containsString(b.InterestedLocations, a.HomeLocation)
}

// mutualMatch reports bidirectional preference satisfaction.
func mutualMatch(a, b *db.Profile) bool {
	return accepts(a, b) && accepts(b, a)
}

// pickRandom selects uniformly among the qualifying candidates.
func pickRandom(r *rand.Rand, candidates []db.Profile) *db.Profile {
	if len(candidates) == 0 {
		return nil
	}
	return &candidates[r.Intn(len(candidates))]
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
