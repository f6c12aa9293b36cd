package comment

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/go-movie-api/internal/domain"
	"github.com/go-movie-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateCommentRequest) (*domain.Comment, error)
	// ListByMovie returns a movie's comments, newest first, each joined with
	// its author's display fields.
	ListByMovie(ctx context.Context, movieID string) ([]domain.CommentView, error)
}

type commentStore interface {
	Put(ctx context.Context, c *domain.Comment) error
	ListByMovie(ctx context.Context, movieID string) ([]domain.Comment, error)
}

type movieStore interface {
	Get(ctx context.Context, movieID string) (*domain.Movie, error)
	Update(ctx context.Context, movieID string, updates map[string]interface{}) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	repo      commentStore
	movieRepo movieStore
	userRepo  userStore
}

type ServiceDeps struct {
	CommentRepo commentStore
	MovieRepo   movieStore
	UserRepo    userStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:      deps.CommentRepo,
		movieRepo: deps.MovieRepo,
		userRepo:  deps.UserRepo,
	}
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreateCommentRequest) (*domain.Comment, error) {
	if _, err := s.movieRepo.Get(ctx, req.MovieID); err != nil {
		return nil, fmt.Errorf("movie not found: %w", domain.ErrNotFound)
	}

	c := &domain.Comment{
		CommentID: id.New(),
		MovieID:   req.MovieID,
		UserID:    userID,
		Text:      req.Text,
		Rating:    req.Rating,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, c); err != nil {
		return nil, err
	}

	// Recompute from all stored ratings rather than incrementally, so the
	// average self-heals if a write was ever lost.
	if err := s.recomputeAverage(ctx, req.MovieID); err != nil {
		slog.Warn("failed to refresh movie average rating", "movie_id", req.MovieID, "err", err)
	}
	return c, nil
}

func (s *service) recomputeAverage(ctx context.Context, movieID string) error {
	comments, err := s.repo.ListByMovie(ctx, movieID)
	if err != nil {
		return err
	}
	if len(comments) == 0 {
		return nil
	}
	sum := 0
	for _, c := range comments {
		sum += c.Rating
	}
	avg := float64(sum) / float64(len(comments))
	avg = math.Round(avg*10) / 10
	return s.movieRepo.Update(ctx, movieID, map[string]interface{}{"average_rating": avg})
}

func (s *service) ListByMovie(ctx context.Context, movieID string) ([]domain.CommentView, error) {
	comments, err := s.repo.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	// Comment ids are ULIDs, so reverse id order is reverse creation order.
	// The query itself gives no ordering guarantee.
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CommentID > comments[j].CommentID
	})

	views := make([]domain.CommentView, 0, len(comments))
	authors := map[string]*domain.User{}
	for _, c := range comments {
		u, ok := authors[c.UserID]
		if !ok {
			u, err = s.userRepo.Get(ctx, c.UserID)
			if err != nil {
				// Deleted author: keep the comment, leave the display fields blank.
				u = &domain.User{}
			}
			authors[c.UserID] = u
		}
		views = append(views, domain.CommentView{
			Comment:   c,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Profile:   u.Profile,
		})
	}
	return views, nil
}
