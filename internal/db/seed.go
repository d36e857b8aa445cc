package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gorm.io/datatypes"
)

var seedLocations = []string{"Carlsbad", "Oceanside", "Encinitas", "San Diego", "Del Mar"}

// SeedTestData resets the database and populates it with demo users, profiles
// and RSVPs for tonight's event.
//
// Behavior:
//  1. Clears all tables.
//  2. Creates 20 users (10 male, 10 female) with hashed passwords and
//     discoverable profiles spread over the seed locations.
//  3. Every profile desires the opposite gender with a wide age range and is
//     interested in all seed locations, so local testing always finds
//     candidates.
//  4. RSVPs every user for today's event.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range []string{
		"cleanup_intents", "rsvps", "reports", "blocked_users",
		"decisions", "chat_messages", "chat_sessions",
		"photos", "profiles", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	today := EventDate(time.Now())

	for i := 1; i <= 20; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		gender, desired := "male", "female"
		if i > 10 {
			gender, desired = "female", "male"
		}

		user := User{
			ID:           uuid.New().String(),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Active:       true,
			LastLoginAt:  time.Now().Add(-time.Duration(r.Intn(500)) * time.Hour),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		profile := Profile{
			UserID:              user.ID,
			Name:                fmt.Sprintf("User %d", i),
			Age:                 21 + r.Intn(15),
			Gender:              gender,
			HomeLocation:        seedLocations[i%len(seedLocations)],
			InterestedLocations: datatypes.NewJSONSlice(seedLocations),
			Bio:                 "Here for the 7pm thing.",
			Interests:           datatypes.NewJSONSlice([]string{"surfing", "coffee", "live music"}),
			DesiredGenders:      datatypes.NewJSONSlice([]string{desired}),
			DesiredAgeMin:       21,
			DesiredAgeMax:       40,
			Discoverable:        true,
		}
		if err := db.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}

		rsvp := RSVP{UserID: user.ID, EventDate: today}
		if err := db.Create(&rsvp).Error; err != nil {
			return fmt.Errorf("failed to seed rsvp: %w", err)
		}
	}
	log.Println("Seeded 20 users with profiles and RSVPs.")

	return nil
}
