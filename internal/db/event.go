package db

import "time"

// EventDate normalizes an instant to the nightly event's key, a UTC
// calendar date. RSVPs, sessions and seen-sets are all scoped by it.
func EventDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
