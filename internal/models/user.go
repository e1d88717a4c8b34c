package models

import "time"

// XPPerLevelStep is the multiplier used to derive the XP threshold for the
// next level: a user at level N levels up once XP reaches N*1000.
const XPPerLevelStep = 1000

// User represents a learner account with its gamification state.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Level        int        `gorm:"not null;default:1" json:"level"`
	XP           int        `gorm:"not null;default:0" json:"xp"`
	Streak       int        `gorm:"not null;default:0" json:"streak"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// XPForNextLevel returns the XP threshold at which the user levels up.
func (u User) XPForNextLevel() int {
	if u.Level < 1 {
		return XPPerLevelStep
	}
	return u.Level * XPPerLevelStep
}

// ApplyLevelUps normalises XP against the level thresholds, consuming XP and
// incrementing the level while the inclusive boundary is reached. It mutates
// the receiver in memory only and returns the number of levels gained;
// persisting the result is the caller's responsibility.
func (u *User) ApplyLevelUps() int {
	if u.Level < 1 {
		u.Level = 1
	}

	gained := 0
	for u.XP >= u.Level*XPPerLevelStep {
		u.XP -= u.Level * XPPerLevelStep
		u.Level++
		gained++
	}

	return gained
}
