package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-movie-api/internal/domain"
	"github.com/go-movie-api/internal/pkg/id"
)

type Service interface {
	// Record marks movieID as watched by userID. One entry per pair: a
	// re-watch refreshes the timestamp instead of adding a row.
	Record(ctx context.Context, userID, movieID string) (*domain.HistoryEntry, error)
	// List returns the user's history joined with movie display fields,
	// most recently watched first.
	List(ctx context.Context, userID string) ([]domain.HistoryView, error)
	Delete(ctx context.Context, userID, historyID string) error
	Clear(ctx context.Context, userID string) error
}

type historyStore interface {
	Put(ctx context.Context, h *domain.HistoryEntry) error
	Get(ctx context.Context, historyID string) (*domain.HistoryEntry, error)
	GetByUserAndMovie(ctx context.Context, userID, movieID string) (*domain.HistoryEntry, error)
	ListByUser(ctx context.Context, userID string) ([]domain.HistoryEntry, error)
	Touch(ctx context.Context, historyID string, watchedAt time.Time) error
	Delete(ctx context.Context, historyID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type movieStore interface {
	Get(ctx context.Context, movieID string) (*domain.Movie, error)
}

type service struct {
	repo      historyStore
	movieRepo movieStore
}

type ServiceDeps struct {
	HistoryRepo historyStore
	MovieRepo   movieStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.HistoryRepo, movieRepo: deps.MovieRepo}
}

func (s *service) Record(ctx context.Context, userID, movieID string) (*domain.HistoryEntry, error) {
	if _, err := s.movieRepo.Get(ctx, movieID); err != nil {
		return nil, fmt.Errorf("movie not found: %w", domain.ErrNotFound)
	}

	now := time.Now().UTC()
	existing, err := s.repo.GetByUserAndMovie(ctx, userID, movieID)
	switch {
	case err == nil:
		if err := s.repo.Touch(ctx, existing.HistoryID, now); err != nil {
			return nil, err
		}
		existing.WatchedAt = now
		return existing, nil
	case errors.Is(err, domain.ErrNotFound):
		h := &domain.HistoryEntry{
			HistoryID: id.New(),
			UserID:    userID,
			MovieID:   movieID,
			WatchedAt: now,
		}
		if err := s.repo.Put(ctx, h); err != nil {
			return nil, err
		}
		return h, nil
	default:
		return nil, err
	}
}

func (s *service) List(ctx context.Context, userID string) ([]domain.HistoryView, error) {
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].WatchedAt.After(entries[j].WatchedAt)
	})

	views := make([]domain.HistoryView, 0, len(entries))
	for _, e := range entries {
		view := domain.HistoryView{HistoryEntry: e}
		// Deleted movies stay listed with blank display fields.
		if m, err := s.movieRepo.Get(ctx, e.MovieID); err == nil {
			view.Title = m.Title
			view.Poster = m.Poster
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *service) Delete(ctx context.Context, userID, historyID string) error {
	h, err := s.repo.Get(ctx, historyID)
	if err != nil {
		return err
	}
	if h.UserID != userID {
		return fmt.Errorf("history entry belongs to another user: %w", domain.ErrForbidden)
	}
	return s.repo.Delete(ctx, historyID)
}

func (s *service) Clear(ctx context.Context, userID string) error {
	return s.repo.DeleteByUser(ctx, userID)
}
