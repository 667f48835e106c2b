package models

import "time"

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// User represents a member profile
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Gender       string    `json:"gender"`
	DateOfBirth  time.Time `json:"date_of_birth"`
	KnownAs      string    `json:"known_as"`
	Introduction string    `json:"introduction"`
	LookingFor   string    `json:"looking_for"`
	Interests    string    `json:"interests"`
	City         string    `json:"city"`
	Country      string    `json:"country"`
	PushToken    *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	LastActive   time.Time `json:"last_active"`

	// Photos holds whatever the loading query attached; see the repository
	// method for which photos that is.
	Photos []*Photo `json:"photos,omitempty"`
}

// MainPhoto returns the user's main photo among the loaded photos, or nil
func (u *User) MainPhoto() *Photo {
	for _, p := range u.Photos {
		if p.IsMain {
			return p
		}
	}
	return nil
}

// Photo represents a photo owned by a single user
type Photo struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	URL        string    `json:"url"`
	ExternalID *string   `json:"-"`
	IsMain     bool      `json:"is_main"`
	CreatedAt  time.Time `json:"created_at"`
}

// Like is a directed edge: SourceUserID likes LikedUserID
type Like struct {
	SourceUserID string    `json:"source_user_id"`
	LikedUserID  string    `json:"liked_user_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// OppositeGender returns the complement of a gender
func OppositeGender(gender string) string {
	if gender == GenderMale {
		return GenderFemale
	}
	return GenderMale
}
