package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	fileapp "github.com/go-movie-api/internal/application/file"
	"github.com/go-movie-api/internal/config"
	"github.com/go-movie-api/internal/domain"
	jwtinfra "github.com/go-movie-api/internal/infrastructure/jwt"
	"github.com/go-movie-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockUserSvc struct{ mock.Mock }

func (m *mockUserSvc) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	args := m.Called(ctx, limit, cursor)
	users, _ := args.Get(0).([]domain.User)
	return users, args.String(1), args.Error(2)
}

func (m *mockUserSvc) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockFileSvc struct{ mock.Mock }

func (m *mockFileSvc) Upload(ctx context.Context, input fileapp.UploadInput) (*domain.File, error) {
	args := m.Called(ctx, input)
	if f, _ := args.Get(0).(*domain.File); f != nil {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFileSvc) UploadBase64(ctx context.Context, filename, base64Data, kind, uploaderID string) (*domain.File, error) {
	args := m.Called(ctx, filename, base64Data, kind, uploaderID)
	if f, _ := args.Get(0).(*domain.File); f != nil {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFileSvc) Download(ctx context.Context, fileID string) (io.ReadCloser, *domain.File, error) {
	args := m.Called(ctx, fileID)
	rc, _ := args.Get(0).(io.ReadCloser)
	f, _ := args.Get(1).(*domain.File)
	return rc, f, args.Error(2)
}

func (m *mockFileSvc) PresignURL(ctx context.Context, fileID string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, fileID, ttl)
	return args.String(0), args.Error(1)
}

func (m *mockFileSvc) Delete(ctx context.Context, fileID, requesterID string, isAdmin bool) error {
	return m.Called(ctx, fileID, requesterID, isAdmin).Error(0)
}

// --- helpers ---

// newTestJWTProvider generates a fresh RSA key pair and returns a *jwtinfra.Provider.
func newTestJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	p, err := jwtinfra.NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         24 * time.Hour,
	})
	require.NoError(t, err)
	return p
}

// bearerReq builds a request with a signed Bearer token for the given userID and role.
func bearerReq(t *testing.T, p *jwtinfra.Provider, method, target, userID, role string, body []byte) *http.Request {
	t.Helper()
	token, err := p.Sign(userID, role)
	require.NoError(t, err)
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// withChiID injects a chi URL param "id" into the request context.
func withChiID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// serveAuthed wraps the handler with middleware.Auth before serving.
func serveAuthed(p *jwtinfra.Provider, h http.Handler, w http.ResponseWriter, r *http.Request) {
	middleware.Auth(p)(h).ServeHTTP(w, r)
}

// --- Register tests ---

func TestRegister_InvalidBody(t *testing.T) {
	h := NewUserHandler(&mockUserSvc{}, &mockFileSvc{})
	r := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewBufferString("not-json"))
	rr := httptest.NewRecorder()
	h.Register(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegister_ValidationFailure(t *testing.T) {
	h := NewUserHandler(&mockUserSvc{}, &mockFileSvc{})
	body, _ := json.Marshal(domain.CreateUserRequest{FirstName: "Ana"}) // missing required fields
	r := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, r)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestRegister_ServiceConflict(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)
	h := NewUserHandler(svc, &mockFileSvc{})
	body, _ := json.Marshal(domain.CreateUserRequest{
		FirstName: "Ana", LastName: "Diaz", Email: "a@b.com", Password: "secret123",
	})
	r := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, r)
	assert.Equal(t, http.StatusConflict, rr.Code)
	svc.AssertExpectations(t)
}

func TestRegister_HappyPath_OmitsPasswordHash(t *testing.T) {
	svc := &mockUserSvc{}
	u := &domain.User{
		UserID: "u1", Email: "a@b.com", FirstName: "Ana", LastName: "Diaz",
		PasswordHash: "$2a$10$secret", Profile: "profile/default.png", Role: domain.RoleUser,
	}
	svc.On("Register", mock.Anything, mock.Anything).Return(u, nil)
	h := NewUserHandler(svc, &mockFileSvc{})
	body, _ := json.Marshal(domain.CreateUserRequest{
		FirstName: "Ana", LastName: "Diaz", Email: "a@b.com", Password: "secret123",
	})
	r := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, r)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var raw map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw))
	assert.Equal(t, "a@b.com", raw["email"])
	assert.Equal(t, "profile/default.png", raw["profile"])
	for key := range raw {
		assert.NotContains(t, key, "password")
	}
}

// multipartRegisterBody builds a multipart form carrying the registration
// fields plus an optional profile picture.
func multipartRegisterBody(t *testing.T, fields map[string]string, profileName string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if profileName != "" {
		fw, err := mw.CreateFormFile("profile", profileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestRegister_MultipartUploadsProfilePicture(t *testing.T) {
	files := &mockFileSvc{}
	files.On("Upload", mock.Anything, mock.MatchedBy(func(in fileapp.UploadInput) bool {
		return in.Kind == fileapp.KindProfile && in.Filename == "avatar.png"
	})).Return(&domain.File{Object: "profile/01F_avatar.png"}, nil)

	svc := &mockUserSvc{}
	svc.On("Register", mock.Anything, mock.MatchedBy(func(req domain.CreateUserRequest) bool {
		return req.Profile == "profile/01F_avatar.png" && req.Email == "a@b.com"
	})).Return(&domain.User{UserID: "u1", Email: "a@b.com", Profile: "profile/01F_avatar.png"}, nil)

	h := NewUserHandler(svc, files)
	body, contentType := multipartRegisterBody(t, map[string]string{
		"first_name": "Ana", "last_name": "Diaz", "email": "a@b.com", "password": "secret123",
	}, "avatar.png")
	r := httptest.NewRequest(http.MethodPost, "/v1/users", body)
	r.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.Register(rr, r)

	assert.Equal(t, http.StatusCreated, rr.Code)
	files.AssertExpectations(t)
	svc.AssertExpectations(t)
}

func TestRegister_MultipartWithoutPictureKeepsPlaceholder(t *testing.T) {
	files := &mockFileSvc{}
	svc := &mockUserSvc{}
	svc.On("Register", mock.Anything, mock.MatchedBy(func(req domain.CreateUserRequest) bool {
		return req.Profile == "" && req.Email == "a@b.com"
	})).Return(&domain.User{UserID: "u1", Email: "a@b.com", Profile: "profile/default.png"}, nil)

	h := NewUserHandler(svc, files)
	body, contentType := multipartRegisterBody(t, map[string]string{
		"first_name": "Ana", "last_name": "Diaz", "email": "a@b.com", "password": "secret123",
	}, "")
	r := httptest.NewRequest(http.MethodPost, "/v1/users", body)
	r.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.Register(rr, r)

	assert.Equal(t, http.StatusCreated, rr.Code)
	files.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	svc.AssertExpectations(t)
}

func TestRegister_MultipartValidationRunsBeforeUpload(t *testing.T) {
	files := &mockFileSvc{}
	h := NewUserHandler(&mockUserSvc{}, files)
	body, contentType := multipartRegisterBody(t, map[string]string{
		"first_name": "Ana", // missing the other required fields
	}, "avatar.png")
	r := httptest.NewRequest(http.MethodPost, "/v1/users", body)
	r.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.Register(rr, r)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	files.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

// --- Get tests ---

func TestGet_NotFound(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("Get", mock.Anything, "missing").Return(nil, domain.ErrNotFound)
	h := NewUserHandler(svc, &mockFileSvc{})
	r := withChiID(httptest.NewRequest(http.MethodGet, "/v1/users/missing", nil), "missing")
	rr := httptest.NewRecorder()
	h.Get(rr, r)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- UpdateProfile tests ---

func TestUpdateProfile_MissingClaims(t *testing.T) {
	h := NewUserHandler(&mockUserSvc{}, &mockFileSvc{})
	body, _ := json.Marshal(domain.UpdateProfileRequest{FirstName: "Ana", LastName: "Diaz"})
	r := httptest.NewRequest(http.MethodPut, "/v1/users/profile", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.UpdateProfile(rr, r) // called directly, no claims in context
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUpdateProfile_TargetsAuthenticatedUser(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockUserSvc{}
	updated := &domain.User{UserID: "u1", FirstName: "Ana", LastName: "Diaz"}
	svc.On("UpdateProfile", mock.Anything, "u1", mock.Anything).Return(updated, nil)
	h := NewUserHandler(svc, &mockFileSvc{})
	body, _ := json.Marshal(domain.UpdateProfileRequest{FirstName: "Ana", LastName: "Diaz"})

	r := bearerReq(t, p, http.MethodPut, "/v1/users/profile", "u1", domain.RoleUser, body)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.UpdateProfile), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestUpdateProfile_WrongOldPassword(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockUserSvc{}
	svc.On("UpdateProfile", mock.Anything, "u1", mock.Anything).Return(nil, domain.ErrUnauthorized)
	h := NewUserHandler(svc, &mockFileSvc{})
	body, _ := json.Marshal(domain.UpdateProfileRequest{
		FirstName: "Ana", LastName: "Diaz", OldPassword: "wrong", NewPassword: "fresh12",
	})

	r := bearerReq(t, p, http.MethodPut, "/v1/users/profile", "u1", domain.RoleUser, body)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.UpdateProfile), rr, r)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// --- List tests ---

func TestList_ReturnsCursor(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("List", mock.Anything, 2, "").Return([]domain.User{
		{UserID: "u1", Email: "a@b.com"},
		{UserID: "u2", Email: "b@b.com"},
	}, "next-cursor", nil)
	h := NewUserHandler(svc, &mockFileSvc{})

	r := httptest.NewRequest(http.MethodGet, "/v1/users?limit=2", nil)
	rr := httptest.NewRecorder()
	h.List(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp PaginatedUsersEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "next-cursor", resp.NextCursor)
}

// --- Delete tests ---

func TestDelete_HappyPath(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("Delete", mock.Anything, "u1").Return(nil)
	h := NewUserHandler(svc, &mockFileSvc{})
	r := withChiID(httptest.NewRequest(http.MethodDelete, "/v1/users/u1", nil), "u1")
	rr := httptest.NewRecorder()
	h.Delete(rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}
