package movie

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-movie-api/internal/domain"
	"github.com/go-movie-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldCategory    = "category"
	fieldPoster      = "poster"
	fieldVideo       = "video"
)

type Service interface {
	Create(ctx context.Context, req domain.CreateMovieRequest) (*domain.Movie, error)
	// List returns the whole catalog ordered by average rating, best first.
	List(ctx context.Context) ([]domain.Movie, error)
	Get(ctx context.Context, movieID string) (*domain.Movie, error)
	Update(ctx context.Context, movieID string, req domain.UpdateMovieRequest) (*domain.Movie, error)
	Delete(ctx context.Context, movieID string) error
}

type movieStore interface {
	Put(ctx context.Context, m *domain.Movie) error
	Get(ctx context.Context, movieID string) (*domain.Movie, error)
	Scan(ctx context.Context) ([]domain.Movie, error)
	Update(ctx context.Context, movieID string, updates map[string]interface{}) error
	Delete(ctx context.Context, movieID string) error
}

type assetJanitor interface {
	Replace(ctx context.Context, oldRef, newRef string)
	DeleteAll(ctx context.Context, refs ...string)
}

type service struct {
	repo   movieStore
	assets assetJanitor
}

type ServiceDeps struct {
	MovieRepo movieStore
	Assets    assetJanitor
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.MovieRepo, assets: deps.Assets}
}

func (s *service) Create(ctx context.Context, req domain.CreateMovieRequest) (*domain.Movie, error) {
	now := time.Now().UTC()
	m := &domain.Movie{
		MovieID:     id.New(),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Poster:      req.Poster,
		Video:       req.Video,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) List(ctx context.Context) ([]domain.Movie, error) {
	movies, err := s.repo.Scan(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(movies, func(i, j int) bool {
		return movies[i].AverageRating > movies[j].AverageRating
	})
	return movies, nil
}

func (s *service) Get(ctx context.Context, movieID string) (*domain.Movie, error) {
	return s.repo.Get(ctx, movieID)
}

func (s *service) Update(ctx context.Context, movieID string, req domain.UpdateMovieRequest) (*domain.Movie, error) {
	current, err := s.repo.Get(ctx, movieID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates[fieldTitle] = *req.Title
	}
	if req.Description != nil {
		updates[fieldDescription] = *req.Description
	}
	if req.Category != nil {
		updates[fieldCategory] = *req.Category
	}
	if req.Poster != nil {
		updates[fieldPoster] = *req.Poster
	}
	if req.Video != nil {
		updates[fieldVideo] = *req.Video
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}

	if err := s.repo.Update(ctx, movieID, updates); err != nil {
		return nil, err
	}
	// The record now carries the new references; replaced media is safe to drop.
	if req.Poster != nil {
		s.assets.Replace(ctx, current.Poster, *req.Poster)
	}
	if req.Video != nil {
		s.assets.Replace(ctx, current.Video, *req.Video)
	}
	return s.repo.Get(ctx, movieID)
}

func (s *service) Delete(ctx context.Context, movieID string) error {
	current, err := s.repo.Get(ctx, movieID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, movieID); err != nil {
		return err
	}
	s.assets.DeleteAll(ctx, current.Poster, current.Video)
	return nil
}
