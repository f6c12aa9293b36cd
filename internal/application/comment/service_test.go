package comment

import (
	"context"
	"errors"
	"testing"

	"github.com/go-movie-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCommentStore struct{ mock.Mock }

func (m *mockCommentStore) Put(ctx context.Context, c *domain.Comment) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockCommentStore) ListByMovie(ctx context.Context, movieID string) ([]domain.Comment, error) {
	args := m.Called(ctx, movieID)
	comments, _ := args.Get(0).([]domain.Comment)
	return comments, args.Error(1)
}

type mockMovieStore struct{ mock.Mock }

func (m *mockMovieStore) Get(ctx context.Context, movieID string) (*domain.Movie, error) {
	args := m.Called(ctx, movieID)
	if mv, _ := args.Get(0).(*domain.Movie); mv != nil {
		return mv, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockMovieStore) Update(ctx context.Context, movieID string, updates map[string]interface{}) error {
	return m.Called(ctx, movieID, updates).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func newService(cs *mockCommentStore, ms *mockMovieStore, us *mockUserStore) Service {
	return NewService(ServiceDeps{CommentRepo: cs, MovieRepo: ms, UserRepo: us})
}

func TestCreate_MovieMissing(t *testing.T) {
	ms := &mockMovieStore{}
	ms.On("Get", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	svc := newService(&mockCommentStore{}, ms, &mockUserStore{})
	_, err := svc.Create(context.Background(), "u1", domain.CreateCommentRequest{
		MovieID: "missing", Text: "great", Rating: 5,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreate_RefreshesAverageRating(t *testing.T) {
	cs := &mockCommentStore{}
	ms := &mockMovieStore{}
	ms.On("Get", mock.Anything, "m1").Return(&domain.Movie{MovieID: "m1"}, nil)
	cs.On("Put", mock.Anything, mock.Anything).Return(nil)
	cs.On("ListByMovie", mock.Anything, "m1").Return([]domain.Comment{
		{Rating: 5}, {Rating: 4}, {Rating: 4},
	}, nil)
	ms.On("Update", mock.Anything, "m1", map[string]interface{}{
		"average_rating": 4.3,
	}).Return(nil)

	svc := newService(cs, ms, &mockUserStore{})
	c, err := svc.Create(context.Background(), "u1", domain.CreateCommentRequest{
		MovieID: "m1", Text: "solid", Rating: 4,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, c.CommentID)
	assert.Equal(t, "u1", c.UserID)
	ms.AssertExpectations(t)
}

func TestCreate_AverageRefreshFailureDoesNotFailCreate(t *testing.T) {
	cs := &mockCommentStore{}
	ms := &mockMovieStore{}
	ms.On("Get", mock.Anything, "m1").Return(&domain.Movie{MovieID: "m1"}, nil)
	cs.On("Put", mock.Anything, mock.Anything).Return(nil)
	cs.On("ListByMovie", mock.Anything, "m1").Return(nil, errors.New("dynamo error"))

	svc := newService(cs, ms, &mockUserStore{})
	_, err := svc.Create(context.Background(), "u1", domain.CreateCommentRequest{
		MovieID: "m1", Text: "solid", Rating: 4,
	})

	require.NoError(t, err)
}

func TestListByMovie_JoinsAuthorsAndCachesLookups(t *testing.T) {
	cs := &mockCommentStore{}
	us := &mockUserStore{}
	cs.On("ListByMovie", mock.Anything, "m1").Return([]domain.Comment{
		{CommentID: "c2", UserID: "u1", Text: "rewatch", Rating: 5},
		{CommentID: "c1", UserID: "u1", Text: "great", Rating: 5},
	}, nil)
	us.On("Get", mock.Anything, "u1").Return(
		&domain.User{UserID: "u1", FirstName: "Ana", LastName: "Diaz", Profile: "profile/a.jpg"}, nil)

	svc := newService(cs, &mockMovieStore{}, us)
	views, err := svc.ListByMovie(context.Background(), "m1")

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Ana", views[0].FirstName)
	assert.Equal(t, "profile/a.jpg", views[1].Profile)
	us.AssertNumberOfCalls(t, "Get", 1)
}

func TestListByMovie_NewestFirstRegardlessOfStoreOrder(t *testing.T) {
	cs := &mockCommentStore{}
	us := &mockUserStore{}
	// ULIDs sort by creation time; the store returns them shuffled.
	cs.On("ListByMovie", mock.Anything, "m1").Return([]domain.Comment{
		{CommentID: "01ARZ3NDEKTSV4RRFFQ69G5FA1", UserID: "u1", Text: "first"},
		{CommentID: "01BX5ZZKBKACTAV9WEVGEMMVS1", UserID: "u1", Text: "third"},
		{CommentID: "01AN4Z07BY79KA1307SR9X4MV1", UserID: "u1", Text: "second"},
	}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	svc := newService(cs, &mockMovieStore{}, us)
	views, err := svc.ListByMovie(context.Background(), "m1")

	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "third", views[0].Text)
	assert.Equal(t, "second", views[1].Text)
	assert.Equal(t, "first", views[2].Text)
}

func TestListByMovie_DeletedAuthorKeepsComment(t *testing.T) {
	cs := &mockCommentStore{}
	us := &mockUserStore{}
	cs.On("ListByMovie", mock.Anything, "m1").Return([]domain.Comment{
		{CommentID: "c1", UserID: "gone", Text: "great", Rating: 5},
	}, nil)
	us.On("Get", mock.Anything, "gone").Return(nil, domain.ErrNotFound)

	svc := newService(cs, &mockMovieStore{}, us)
	views, err := svc.ListByMovie(context.Background(), "m1")

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Empty(t, views[0].FirstName)
	assert.Equal(t, "great", views[0].Text)
}
