package profile

import (
	"time"

	"skillswap/internal/service/catalog"
)

// Proficiency levels for an offered skill. Closed set, validated at
// construction via ParseLevel.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelExpert       Level = "expert"
)

// ParseLevel validates a raw proficiency level value.
func ParseLevel(raw string) (Level, error) {
	switch Level(raw) {
	case LevelBeginner, LevelIntermediate, LevelExpert:
		return Level(raw), nil
	}
	return "", ErrInvalidLevel
}

// Domain Models
type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Bio       string    `json:"bio"`
	Location  string    `json:"location"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Offer struct {
	ID              string        `json:"id"`
	ProfileID       string        `json:"profile_id"`
	Skill           catalog.Skill `json:"skill"`
	Description     string        `json:"description"`
	Level           Level         `json:"level"`
	AvailableOnline bool          `json:"available_online"`
	CreatedAt       time.Time     `json:"created_at"`
}

type Request struct {
	ID        string        `json:"id"`
	ProfileID string        `json:"profile_id"`
	Skill     catalog.Skill `json:"skill"`
	Details   string        `json:"details"`
	CreatedAt time.Time     `json:"created_at"`
}

// DTOs
type UpdateProfileRequest struct {
	Bio      *string `json:"bio" binding:"omitempty,max=2000"`
	Location *string `json:"location" binding:"omitempty,max=100"`
	PhotoURL *string `json:"photo_url" binding:"omitempty,url"`
}

type CreateOfferRequest struct {
	SkillName       string `json:"skill_name" binding:"required,max=80"`
	Description     string `json:"description" binding:"omitempty,max=2000"`
	Level           string `json:"level" binding:"required"`
	AvailableOnline bool   `json:"available_online"`
}

type CreateRequestRequest struct {
	SkillName string `json:"skill_name" binding:"required,max=80"`
	Details   string `json:"details" binding:"omitempty,max=2000"`
}

type ProfileResponse struct {
	*Profile
	Offers   []*Offer   `json:"offers"`
	Requests []*Request `json:"requests"`
}

type OfferDetailResponse struct {
	Offer *Offer   `json:"offer"`
	Owner *Profile `json:"owner"`
}
