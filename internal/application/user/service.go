package user

import (
	"context"
	"fmt"
	"time"

	"github.com/go-movie-api/internal/domain"
	"github.com/go-movie-api/internal/pkg/id"
	"github.com/go-movie-api/internal/pkg/password"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldEmail        = "email"
	fieldPhone        = "phone"
	fieldFirstName    = "first_name"
	fieldLastName     = "last_name"
	fieldRole         = "role"
	fieldProfile      = "profile"
	fieldPasswordHash = "password_hash"
)

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
}

type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	Delete(ctx context.Context, userID string) error
	ScanPage(ctx context.Context, role string, limit int32, cursor string) ([]domain.User, string, error)
}

// assetJanitor cleans up replaced or orphaned media objects after the owning
// record has been committed.
type assetJanitor interface {
	Replace(ctx context.Context, oldRef, newRef string)
	DeleteAll(ctx context.Context, refs ...string)
}

type service struct {
	repo              userStore
	assets            assetJanitor
	defaultProfileKey string
}

type ServiceDeps struct {
	UserRepo          userStore
	Assets            assetJanitor
	DefaultProfileKey string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:              deps.UserRepo,
		assets:            deps.Assets,
		defaultProfileKey: deps.DefaultProfileKey,
	}
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	profile := req.Profile
	if profile == "" {
		profile = s.defaultProfileKey
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Profile:      profile,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ScanPage(ctx, domain.RoleUser, int32(limit), cursor)
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	current, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates[fieldFirstName] = *req.FirstName
	}
	if req.LastName != nil {
		updates[fieldLastName] = *req.LastName
	}
	if req.Email != nil && *req.Email != current.Email {
		if _, err := s.repo.GetByEmail(ctx, *req.Email); err == nil {
			return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		updates[fieldEmail] = *req.Email
	}
	if req.Phone != nil {
		updates[fieldPhone] = *req.Phone
	}
	if req.Role != nil {
		if *req.Role != domain.RoleUser && *req.Role != domain.RoleAdmin {
			return nil, fmt.Errorf("unknown role %q: %w", *req.Role, domain.ErrBadRequest)
		}
		updates[fieldRole] = *req.Role
	}
	if req.NewPassword != nil {
		hash, err := password.Hash(*req.NewPassword)
		if err != nil {
			return nil, err
		}
		updates[fieldPasswordHash] = hash
	}
	if req.Profile != nil {
		updates[fieldProfile] = *req.Profile
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}

	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	// The record now points at the new picture; the old object is safe to drop.
	if req.Profile != nil {
		s.assets.Replace(ctx, current.Profile, *req.Profile)
	}
	return s.repo.Get(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	current, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		fieldFirstName: req.FirstName,
		fieldLastName:  req.LastName,
	}
	if req.NewPassword != "" {
		if !password.Verify(req.OldPassword, current.PasswordHash) {
			return nil, fmt.Errorf("current password does not match: %w", domain.ErrUnauthorized)
		}
		hash, err := password.Hash(req.NewPassword)
		if err != nil {
			return nil, err
		}
		updates[fieldPasswordHash] = hash
	}
	if req.Profile != nil {
		updates[fieldProfile] = *req.Profile
	}

	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	if req.Profile != nil {
		s.assets.Replace(ctx, current.Profile, *req.Profile)
	}
	return s.repo.Get(ctx, userID)
}

func (s *service) Delete(ctx context.Context, userID string) error {
	current, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.assets.DeleteAll(ctx, current.Profile)
	return nil
}
