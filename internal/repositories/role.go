package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/resume-screener/internal/models"
)

var ErrNotFound = errors.New("record not found")

type RoleRepository interface {
	FindBySlug(ctx context.Context, slug string) (*models.RoleProfile, error)
	List(ctx context.Context) ([]models.RoleProfile, error)
	Upsert(ctx context.Context, role *models.RoleProfile) error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

// FindBySlug implements RoleRepository.
func (r *roleRepository) FindBySlug(ctx context.Context, slug string) (*models.RoleProfile, error) {
	var role models.RoleProfile
	if err := r.db.WithContext(ctx).Where("slug = ?", normalizeSlug(slug)).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("role %q: %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find role: %w", err)
	}

	return &role, nil
}

// List implements RoleRepository.
func (r *roleRepository) List(ctx context.Context) ([]models.RoleProfile, error) {
	var roles []models.RoleProfile
	if err := r.db.WithContext(ctx).Order("slug").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	return roles, nil
}

// Upsert implements RoleRepository. Existing rows are matched by slug.
func (r *roleRepository) Upsert(ctx context.Context, role *models.RoleProfile) error {
	if err := ValidateRole(role); err != nil {
		return err
	}
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	role.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "rubric", "threshold", "updated_at"}),
	}).Create(role).Error
	if err != nil {
		return fmt.Errorf("failed to upsert role: %w", err)
	}

	return nil
}

type memoryRoleRepository struct {
	mu    sync.RWMutex
	roles map[string]models.RoleProfile
}

// NewMemoryRoleRepository keeps role profiles for the life of the process.
// It is used when no database is configured.
func NewMemoryRoleRepository(seed ...models.RoleProfile) (RoleRepository, error) {
	repo := &memoryRoleRepository{roles: make(map[string]models.RoleProfile)}
	for i := range seed {
		if err := repo.Upsert(context.Background(), &seed[i]); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func (m *memoryRoleRepository) FindBySlug(_ context.Context, slug string) (*models.RoleProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	role, ok := m.roles[normalizeSlug(slug)]
	if !ok {
		return nil, fmt.Errorf("role %q: %w", slug, ErrNotFound)
	}
	return &role, nil
}

func (m *memoryRoleRepository) List(_ context.Context) ([]models.RoleProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	roles := make([]models.RoleProfile, 0, len(m.roles))
	for _, role := range m.roles {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Slug < roles[j].Slug })
	return roles, nil
}

func (m *memoryRoleRepository) Upsert(_ context.Context, role *models.RoleProfile) error {
	if err := ValidateRole(role); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if existing, ok := m.roles[role.Slug]; ok {
		role.ID = existing.ID
		role.CreatedAt = existing.CreatedAt
	} else {
		if role.ID == uuid.Nil {
			role.ID = uuid.New()
		}
		role.CreatedAt = now
	}
	role.UpdatedAt = now

	m.roles[role.Slug] = *role
	return nil
}

// ValidateRole normalises the slug and threshold and checks required fields.
func ValidateRole(role *models.RoleProfile) error {
	if role == nil {
		return errors.New("role is nil")
	}
	role.Slug = normalizeSlug(role.Slug)
	role.Title = strings.TrimSpace(role.Title)
	role.Rubric = strings.TrimSpace(role.Rubric)

	switch {
	case role.Slug == "":
		return errors.New("role slug is required")
	case strings.ContainsAny(role.Slug, " /\t\n"):
		return fmt.Errorf("role slug %q must not contain spaces or slashes", role.Slug)
	case role.Title == "":
		return fmt.Errorf("role %q: title is required", role.Slug)
	case role.Rubric == "":
		return fmt.Errorf("role %q: rubric is required", role.Slug)
	case role.Threshold < 0 || role.Threshold > 4:
		return fmt.Errorf("role %q: threshold must be between 0 and 4, got %d", role.Slug, role.Threshold)
	}

	if role.Threshold == 0 {
		role.Threshold = models.DefaultThreshold
	}
	return nil
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
