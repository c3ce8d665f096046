package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/pkg/logger"
)

// fakeRepo mimics the case-insensitive unique index: get-or-create keyed
// on the lowercased name, first spelling wins.
type fakeRepo struct {
	byLower map[string]*Skill
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byLower: make(map[string]*Skill)}
}

func (f *fakeRepo) GetOrCreate(_ context.Context, name string) (*Skill, error) {
	key := strings.ToLower(name)
	if existing, ok := f.byLower[key]; ok {
		return existing, nil
	}
	skill := &Skill{ID: uuid.New().String(), Name: name, CreatedAt: time.Now()}
	f.byLower[key] = skill
	return skill, nil
}

func (f *fakeRepo) GetByID(_ context.Context, skillID string) (*Skill, error) {
	for _, s := range f.byLower {
		if s.ID == skillID {
			return s, nil
		}
	}
	return nil, ErrSkillNotFound
}

func (f *fakeRepo) List(context.Context) ([]*Skill, error) {
	skills := make([]*Skill, 0, len(f.byLower))
	for _, s := range f.byLower {
		skills = append(skills, s)
	}
	return skills, nil
}

func TestResolve_TrimsWhitespace(t *testing.T) {
	svc := NewService(newFakeRepo(), logger.Nop())

	skill, err := svc.Resolve(context.Background(), "  Guitar  ")
	require.NoError(t, err)
	assert.Equal(t, "Guitar", skill.Name)
}

func TestResolve_EmptyName(t *testing.T) {
	svc := NewService(newFakeRepo(), logger.Nop())

	_, err := svc.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptySkillName)
}

func TestResolve_CaseInsensitiveIdempotent(t *testing.T) {
	svc := NewService(newFakeRepo(), logger.Nop())
	ctx := context.Background()

	first, err := svc.Resolve(ctx, "Guitar")
	require.NoError(t, err)

	second, err := svc.Resolve(ctx, "guitar")
	require.NoError(t, err)

	third, err := svc.Resolve(ctx, "GUITAR")
	require.NoError(t, err)

	// All case variants converge on the first persisted row.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ID, third.ID)
	assert.Equal(t, "Guitar", third.Name)
}

func TestResolve_DistinctNames(t *testing.T) {
	svc := NewService(newFakeRepo(), logger.Nop())
	ctx := context.Background()

	guitar, err := svc.Resolve(ctx, "Guitar")
	require.NoError(t, err)

	piano, err := svc.Resolve(ctx, "Piano")
	require.NoError(t, err)

	assert.NotEqual(t, guitar.ID, piano.ID)
}
