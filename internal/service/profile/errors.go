package profile

import "errors"

var (
	// Profile errors
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")

	// Offer errors
	ErrOfferNotFound  = errors.New("offer not found")
	ErrDuplicateOffer = errors.New("an offer for this skill already exists")
	ErrNotOfferOwner  = errors.New("offer belongs to another profile")

	// Request errors
	ErrRequestNotFound  = errors.New("request not found")
	ErrDuplicateRequest = errors.New("a request for this skill already exists")
	ErrNotRequestOwner  = errors.New("request belongs to another profile")

	ErrInvalidLevel = errors.New("invalid proficiency level")
)
