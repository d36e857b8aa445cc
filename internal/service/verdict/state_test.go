package verdict_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevenpm/date-backend/internal/db"
	"github.com/sevenpm/date-backend/internal/service/verdict"
)

func decision(user string, connect bool) db.Decision {
	return db.Decision{SessionID: "s1", UserID: user, Connect: connect}
}

func TestEvaluateAwaitingUntilBothDecide(t *testing.T) {
	assert.Equal(t, verdict.StateAwaitingDecisions, verdict.Evaluate(nil, false))
	assert.Equal(t, verdict.StateAwaitingDecisions,
		verdict.Evaluate([]db.Decision{decision("a", true)}, false))
	assert.Equal(t, verdict.StateAwaitingDecisions,
		verdict.Evaluate([]db.Decision{decision("a", false)}, true))
}

func TestEvaluateMutual(t *testing.T) {
	decisions := []db.Decision{decision("a", true), decision("b", true)}

	assert.Equal(t, verdict.StateMutual, verdict.Evaluate(decisions, false))
	// A report never downgrades a mutual connection.
	assert.Equal(t, verdict.StateMutual, verdict.Evaluate(decisions, true))
}

func TestEvaluateNonMutual(t *testing.T) {
	oneSided := []db.Decision{decision("a", true), decision("b", false)}
	bothReject := []db.Decision{decision("a", false), decision("b", false)}

	assert.Equal(t, verdict.StatePurged, verdict.Evaluate(oneSided, false))
	assert.Equal(t, verdict.StatePurged, verdict.Evaluate(bothReject, false))
	assert.Equal(t, verdict.StateRetained, verdict.Evaluate(oneSided, true))
	assert.Equal(t, verdict.StateRetained, verdict.Evaluate(bothReject, true))
}

// TestEvaluateDuplicateRowsFirstWins covers the defensive reduction: if the
// store ever produced two rows for one user, the earliest verdict holds.
func TestEvaluateDuplicateRowsFirstWins(t *testing.T) {
	decisions := []db.Decision{
		decision("a", true),
		decision("a", false), // later contradiction, ignored
		decision("b", true),
	}
	assert.Equal(t, verdict.StateMutual, verdict.Evaluate(decisions, false))
}
