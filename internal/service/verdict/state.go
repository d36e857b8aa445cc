package verdict

import "github.com/sevenpm/date-backend/internal/db"

// State is a session's cleanup disposition.
type State string

const (
	// StateAwaitingDecisions: fewer than two participants have decided.
	StateAwaitingDecisions State = "awaiting_decisions"
	// StateMutual: both decided to connect; messages are kept indefinitely.
	StateMutual State = "mutual"
	// StateRetained: not mutual, but a report references the session, so the
	// history is preserved as evidence.
	StateRetained State = "retained"
	// StatePurged: not mutual and unreported; messages and the session row
	// are deleted.
	StatePurged State = "purged"
)

// Evaluate computes the session's disposition from its recorded decisions
// and moderation status. Pure function: transitions are testable without a
// database.
//
// Decisions are reduced to one verdict per user, earliest first, so even if
// duplicate rows ever appeared the first write would win.
func Evaluate(decisions []db.Decision, hasReport bool) State {
	byUser := make(map[string]bool, 2)
	for _, d := range decisions {
		if _, ok := byUser[d.UserID]; !ok {
			byUser[d.UserID] = d.Connect
		}
	}

	if len(byUser) < 2 {
		return StateAwaitingDecisions
	}

	mutual := true
	for _, connect := range byUser {
		if !connect {
			mutual = false
			break
		}
	}
	if mutual {
		return StateMutual
	}
	if hasReport {
		return StateRetained
	}
	return StatePurged
}
