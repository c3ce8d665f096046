package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"skillswap/pkg/db"
)

const uniqueViolation = "23505"

type Repository interface {
	// Profile operations
	CreateProfile(ctx context.Context, p *Profile) error
	GetProfileByID(ctx context.Context, profileID string) (*Profile, error)
	GetProfileByUserID(ctx context.Context, userID string) (*Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*Profile, error)
	UpdateProfile(ctx context.Context, p *Profile) error

	// Offer operations
	CreateOffer(ctx context.Context, o *Offer) error
	GetOfferByID(ctx context.Context, offerID string) (*Offer, error)
	DeleteOffer(ctx context.Context, offerID string) error
	ListOffersByProfile(ctx context.Context, profileID string) ([]*Offer, error)
	ListRecentOffers(ctx context.Context, limit int) ([]*Offer, error)
	SearchOffersBySkillName(ctx context.Context, q string) ([]*Offer, error)

	// Request operations
	CreateRequest(ctx context.Context, r *Request) error
	GetRequestByID(ctx context.Context, requestID string) (*Request, error)
	DeleteRequest(ctx context.Context, requestID string) error
	ListRequestsByProfile(ctx context.Context, profileID string) ([]*Request, error)
}

type repository struct {
	db db.SQLExecutor
}

func NewRepository(database db.SQLExecutor) Repository {
	return &repository{db: database}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// CreateProfile creates a new profile. A user has at most one profile;
// the unique constraint on user_id backs that invariant.
func (r *repository) CreateProfile(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (id, user_id, bio, location, photo_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.UserID, p.Bio, p.Location, p.PhotoURL,
	).Scan(&p.CreatedAt)

	if isUniqueViolation(err) {
		return ErrProfileExists
	}
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}

	return nil
}

const profileColumns = `
	p.id, p.user_id, u.username, u.email, p.bio, p.location, p.photo_url, p.created_at
`

func scanProfile(row *sql.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.UserID, &p.Username, &p.Email, &p.Bio, &p.Location, &p.PhotoURL, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return &p, nil
}

// GetProfileByID retrieves a profile by ID
func (r *repository) GetProfileByID(ctx context.Context, profileID string) (*Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles p
		INNER JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`
	return scanProfile(r.db.QueryRowContext(ctx, query, profileID))
}

// GetProfileByUserID retrieves the profile owned by a user
func (r *repository) GetProfileByUserID(ctx context.Context, userID string) (*Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles p
		INNER JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
	`
	return scanProfile(r.db.QueryRowContext(ctx, query, userID))
}

// GetProfileByUsername retrieves a profile by its owner's username
func (r *repository) GetProfileByUsername(ctx context.Context, username string) (*Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles p
		INNER JOIN users u ON u.id = p.user_id
		WHERE u.username = $1
	`
	return scanProfile(r.db.QueryRowContext(ctx, query, username))
}

// UpdateProfile updates bio, location and photo
func (r *repository) UpdateProfile(ctx context.Context, p *Profile) error {
	query := `
		UPDATE profiles
		SET bio = $2, location = $3, photo_url = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, p.ID, p.Bio, p.Location, p.PhotoURL)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}

const offerColumns = `
	o.id, o.profile_id, o.description, o.level, o.available_online, o.created_at,
	s.id, s.name, s.created_at
`

func scanOfferRow(scan func(dest ...any) error) (*Offer, error) {
	var o Offer
	err := scan(
		&o.ID, &o.ProfileID, &o.Description, &o.Level, &o.AvailableOnline, &o.CreatedAt,
		&o.Skill.ID, &o.Skill.Name, &o.Skill.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOffer creates a new offer. The (profile_id, skill_id) pair is
// unique; a duplicate surfaces as ErrDuplicateOffer.
func (r *repository) CreateOffer(ctx context.Context, o *Offer) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}

	query := `
		INSERT INTO offers (id, profile_id, skill_id, description, level, available_online)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		o.ID, o.ProfileID, o.Skill.ID, o.Description, o.Level, o.AvailableOnline,
	).Scan(&o.CreatedAt)

	if isUniqueViolation(err) {
		return ErrDuplicateOffer
	}
	if err != nil {
		return fmt.Errorf("insert offer: %w", err)
	}

	return nil
}

// GetOfferByID retrieves an offer by ID
func (r *repository) GetOfferByID(ctx context.Context, offerID string) (*Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers o
		INNER JOIN skills s ON s.id = o.skill_id
		WHERE o.id = $1
	`

	offer, err := scanOfferRow(r.db.QueryRowContext(ctx, query, offerID).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query offer: %w", err)
	}

	return offer, nil
}

// DeleteOffer deletes an offer. Proposals referencing it cascade away.
func (r *repository) DeleteOffer(ctx context.Context, offerID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM offers WHERE id = $1`, offerID)
	if err != nil {
		return fmt.Errorf("delete offer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrOfferNotFound
	}

	return nil
}

func (r *repository) queryOffers(ctx context.Context, query string, args ...any) ([]*Offer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}
	defer rows.Close()

	offers := make([]*Offer, 0)
	for rows.Next() {
		offer, err := scanOfferRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, offer)
	}

	return offers, nil
}

// ListOffersByProfile retrieves all offers owned by a profile
func (r *repository) ListOffersByProfile(ctx context.Context, profileID string) ([]*Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers o
		INNER JOIN skills s ON s.id = o.skill_id
		WHERE o.profile_id = $1
		ORDER BY o.created_at DESC
	`
	return r.queryOffers(ctx, query, profileID)
}

// ListRecentOffers retrieves the newest offers across all profiles
func (r *repository) ListRecentOffers(ctx context.Context, limit int) ([]*Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers o
		INNER JOIN skills s ON s.id = o.skill_id
		ORDER BY o.created_at DESC
		LIMIT $1
	`
	return r.queryOffers(ctx, query, limit)
}

// SearchOffersBySkillName retrieves offers whose skill name contains q
func (r *repository) SearchOffersBySkillName(ctx context.Context, q string) ([]*Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers o
		INNER JOIN skills s ON s.id = o.skill_id
		WHERE s.name ILIKE '%' || $1 || '%'
		ORDER BY o.created_at DESC
	`
	return r.queryOffers(ctx, query, q)
}

const requestColumns = `
	r.id, r.profile_id, r.details, r.created_at,
	s.id, s.name, s.created_at
`

func scanRequestRow(scan func(dest ...any) error) (*Request, error) {
	var req Request
	err := scan(
		&req.ID, &req.ProfileID, &req.Details, &req.CreatedAt,
		&req.Skill.ID, &req.Skill.Name, &req.Skill.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// CreateRequest creates a new request. Unique per (profile_id, skill_id).
func (r *repository) CreateRequest(ctx context.Context, req *Request) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	query := `
		INSERT INTO requests (id, profile_id, skill_id, details)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		req.ID, req.ProfileID, req.Skill.ID, req.Details,
	).Scan(&req.CreatedAt)

	if isUniqueViolation(err) {
		return ErrDuplicateRequest
	}
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}

	return nil
}

// GetRequestByID retrieves a request by ID
func (r *repository) GetRequestByID(ctx context.Context, requestID string) (*Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests r
		INNER JOIN skills s ON s.id = r.skill_id
		WHERE r.id = $1
	`

	req, err := scanRequestRow(r.db.QueryRowContext(ctx, query, requestID).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query request: %w", err)
	}

	return req, nil
}

// DeleteRequest deletes a request
func (r *repository) DeleteRequest(ctx context.Context, requestID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM requests WHERE id = $1`, requestID)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrRequestNotFound
	}

	return nil
}

// ListRequestsByProfile retrieves all requests owned by a profile
func (r *repository) ListRequestsByProfile(ctx context.Context, profileID string) ([]*Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests r
		INNER JOIN skills s ON s.id = r.skill_id
		WHERE r.profile_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*Request, 0)
	for rows.Next() {
		req, err := scanRequestRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, nil
}
