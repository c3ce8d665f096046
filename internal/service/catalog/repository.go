package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"skillswap/pkg/db"
)

type Repository interface {
	GetOrCreate(ctx context.Context, name string) (*Skill, error)
	GetByID(ctx context.Context, skillID string) (*Skill, error)
	List(ctx context.Context) ([]*Skill, error)
}

type repository struct {
	db db.SQLExecutor
}

func NewRepository(database db.SQLExecutor) Repository {
	return &repository{db: database}
}

// GetOrCreate inserts the skill unless one with the same name (ignoring
// case) already exists, then returns the canonical row. The insert relies
// on the unique index over lower(name), so two concurrent resolutions of
// case variants of the same name converge on a single row.
func (r *repository) GetOrCreate(ctx context.Context, name string) (*Skill, error) {
	insert := `
		INSERT INTO skills (id, name)
		VALUES ($1, $2)
		ON CONFLICT ((lower(name))) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, insert, uuid.New().String(), name); err != nil {
		return nil, fmt.Errorf("insert skill: %w", err)
	}

	query := `
		SELECT id, name, created_at
		FROM skills
		WHERE lower(name) = lower($1)
	`

	var skill Skill
	err := r.db.QueryRowContext(ctx, query, name).Scan(&skill.ID, &skill.Name, &skill.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSkillNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query skill: %w", err)
	}

	return &skill, nil
}

// GetByID retrieves a skill by ID
func (r *repository) GetByID(ctx context.Context, skillID string) (*Skill, error) {
	query := `SELECT id, name, created_at FROM skills WHERE id = $1`

	var skill Skill
	err := r.db.QueryRowContext(ctx, query, skillID).Scan(&skill.ID, &skill.Name, &skill.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSkillNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query skill: %w", err)
	}

	return &skill, nil
}

// List retrieves all skills ordered by name
func (r *repository) List(ctx context.Context) ([]*Skill, error) {
	query := `SELECT id, name, created_at FROM skills ORDER BY lower(name) ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query skills: %w", err)
	}
	defer rows.Close()

	skills := make([]*Skill, 0)
	for rows.Next() {
		var skill Skill
		if err := rows.Scan(&skill.ID, &skill.Name, &skill.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		skills = append(skills, &skill)
	}

	return skills, nil
}
