package file

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/go-movie-api/internal/domain"
	s3infra "github.com/go-movie-api/internal/infrastructure/s3"
	"github.com/go-movie-api/internal/pkg/id"
)

// Kinds partition the bucket into prefixes so the asset janitor can tell a
// shared placeholder from user media by its key alone.
const (
	KindProfile = "profile"
	KindPoster  = "poster"
	KindVideo   = "video"
)

var kindPrefixes = map[string]string{
	KindProfile: "profile",
	KindPoster:  "posters",
	KindVideo:   "videos",
}

type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
	Kind        string
	UploaderID  string
}

type Service interface {
	// Upload streams media to the object store and records its metadata.
	// The returned File's Object key is what catalog records reference.
	Upload(ctx context.Context, input UploadInput) (*domain.File, error)
	UploadBase64(ctx context.Context, filename, base64Data, kind, uploaderID string) (*domain.File, error)
	Download(ctx context.Context, fileID string) (io.ReadCloser, *domain.File, error)
	// PresignURL returns a time-limited direct link to the object, so large
	// media can be fetched from S3 without streaming through the API.
	PresignURL(ctx context.Context, fileID string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, fileID, requesterID string, isAdmin bool) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type fileStore interface {
	Put(ctx context.Context, f *domain.File) error
	Get(ctx context.Context, fileID string) (*domain.File, error)
	SoftDelete(ctx context.Context, fileID string) error
}

type service struct {
	store    objectStore
	fileRepo fileStore
}

func NewService(store objectStore, fileRepo fileStore) Service {
	return &service{store: store, fileRepo: fileRepo}
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*domain.File, error) {
	prefix, ok := kindPrefixes[input.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown upload kind %q: %w", input.Kind, domain.ErrBadRequest)
	}
	safeName := sanitizeFilename(input.Filename)
	fileID := id.New()
	// Key includes the file id so two uploads of the same name never collide.
	key := fmt.Sprintf("%s/%s_%s", prefix, fileID, safeName)

	hasher := sha256.New()
	tee := io.TeeReader(input.Reader, hasher)
	contentType := input.ContentType
	if contentType == "" {
		contentType = s3infra.ContentTypeFromName(safeName)
	}
	if _, err := s.store.Upload(ctx, key, tee, contentType); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	f := &domain.File{
		FileID:           fileID,
		Object:           key,
		Size:             input.Size,
		Type:             contentType,
		Name:             safeName,
		Hash:             hex.EncodeToString(hasher.Sum(nil)),
		Kind:             input.Kind,
		UploadedByUserID: input.UploaderID,
		Enable:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.fileRepo.Put(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) UploadBase64(ctx context.Context, filename, base64Data, kind, uploaderID string) (*domain.File, error) {
	decoded, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", domain.ErrBadRequest)
	}
	return s.Upload(ctx, UploadInput{
		Reader:     bytes.NewReader(decoded),
		Filename:   filename,
		Size:       int64(len(decoded)),
		Kind:       kind,
		UploaderID: uploaderID,
	})
}

func (s *service) Download(ctx context.Context, fileID string) (io.ReadCloser, *domain.File, error) {
	f, err := s.fileRepo.Get(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	if !f.Enable {
		return nil, nil, fmt.Errorf("file not found: %w", domain.ErrNotFound)
	}
	rc, err := s.store.Download(ctx, f.Object)
	if err != nil {
		return nil, nil, err
	}
	return rc, f, nil
}

func (s *service) PresignURL(ctx context.Context, fileID string, ttl time.Duration) (string, error) {
	f, err := s.fileRepo.Get(ctx, fileID)
	if err != nil {
		return "", err
	}
	if !f.Enable {
		return "", fmt.Errorf("file not found: %w", domain.ErrNotFound)
	}
	return s.store.PresignedURL(ctx, f.Object, ttl)
}

func (s *service) Delete(ctx context.Context, fileID, requesterID string, isAdmin bool) error {
	f, err := s.fileRepo.Get(ctx, fileID)
	if err != nil {
		return err
	}
	if !f.Enable {
		return fmt.Errorf("file not found: %w", domain.ErrNotFound)
	}
	if f.UploadedByUserID != requesterID && !isAdmin {
		return fmt.Errorf("access denied: %w", domain.ErrForbidden)
	}
	if err := s.store.Delete(ctx, f.Object); err != nil {
		return err
	}
	return s.fileRepo.SoftDelete(ctx, fileID)
}

// sanitizeFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) to prevent path traversal in S3 keys.
func sanitizeFilename(name string) string {
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." {
		return result
	}
	return "_"
}
