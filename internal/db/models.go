package db

import (
	"time"

	"gorm.io/datatypes"
)

// User table. ID is a uuid string so clients can hold stable identifiers
// across sign-ins.
type User struct {
	ID           string  `gorm:"primaryKey;size:36"`
	Email        string  `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string  `gorm:"size:255;not null"`
	PushToken    *string `gorm:"size:255"`
	Active       bool    `gorm:"default:true"`
	LastLoginAt  time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Profile holds a user's private attributes and stated preferences.
// Set-valued fields are JSON columns; search filters on the scalar columns
// in SQL and on the JSON sets in Go.
type Profile struct {
	UserID              string `gorm:"primaryKey;size:36"`
	Name                string `gorm:"size:64;not null"`
	Age                 int    `gorm:"not null;index:idx_discoverable_age,priority:2"`
	Gender              string `gorm:"size:16;not null"`
	HomeLocation        string `gorm:"size:64;not null"`
	InterestedLocations datatypes.JSONSlice[string]
	Bio                 string `gorm:"size:2048"`
	Interests           datatypes.JSONSlice[string]
	DesiredGenders      datatypes.JSONSlice[string]
	DesiredAgeMin       int       `gorm:"not null"`
	DesiredAgeMax       int       `gorm:"not null"`
	Discoverable        bool      `gorm:"default:true;index:idx_discoverable_age,priority:1"`
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`
}

// Photo is a profile photo stored in S3; ObjectKey is the bucket key,
// Position orders the gallery.
type Photo struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"size:36;not null;index"`
	ObjectKey string    `gorm:"size:255;not null"`
	Position  int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ChatSession is one ephemeral pairing for a nightly event. Messages stop
// being accepted after ExpiresAt; the row itself is removed only by cleanup
// of a non-mutual session.
type ChatSession struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserAID   string `gorm:"size:36;not null;index"`
	UserBID   string `gorm:"size:36;not null;index"`
	EventDate string `gorm:"size:10;not null;index"` // YYYY-MM-DD (UTC)
	StartedAt time.Time
	ExpiresAt time.Time
}

// ChatMessage carries an explicit SenderID rather than inferring authorship
// from write metadata.
type ChatMessage struct {
	ID        string    `gorm:"primaryKey;size:36"`
	SessionID string    `gorm:"size:36;not null;index:idx_session_created,priority:1"`
	SenderID  string    `gorm:"size:36;not null"`
	Body      string    `gorm:"size:2048;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_session_created,priority:2"`
}

// Decision is one participant's accept/reject verdict for a session.
//
// Composite PK: (SessionID, UserID)
//   - Guarantees at most one decision per user per session; a duplicate
//     write is a no-op (first write wins).
//
// Fields:
//   - Connect: true if the user wants to stay connected after the chat.
type Decision struct {
	SessionID string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"primaryKey;size:36"`
	Connect   bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// BlockedUser is a private cooldown entry: BlockedID is excluded from
// BlockerID's candidate searches while now < ExpiresAt. Expired rows are
// never reaped; they simply fail the time check.
type BlockedUser struct {
	BlockerID string    `gorm:"primaryKey;size:36"`
	BlockedID string    `gorm:"primaryKey;size:36"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Report is a moderation flag on a session. Its presence suppresses message
// deletion so evidence is preserved.
type Report struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	SessionID  string    `gorm:"size:36;not null;index"`
	ReporterID string    `gorm:"size:36;not null"`
	ReportedID string    `gorm:"size:36;not null"`
	Reason     string    `gorm:"size:1024"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// RSVP is a per-day opt-in to the nightly event, keyed by (user, date).
type RSVP struct {
	UserID    string    `gorm:"primaryKey;size:36"`
	EventDate string    `gorm:"primaryKey;size:10"` // YYYY-MM-DD (UTC)
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Cleanup intent states.
const (
	IntentPending = "pending"
	IntentDone    = "done"
)

// CleanupIntent records that a purge was decided before the destructive
// steps run, so a crash mid-purge can be detected and resumed at startup.
type CleanupIntent struct {
	SessionID string    `gorm:"primaryKey;size:36"`
	State     string    `gorm:"size:16;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
