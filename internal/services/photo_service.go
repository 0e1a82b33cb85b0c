package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/yukikurage/field-task-api/internal/config"
	"github.com/yukikurage/field-task-api/internal/constants"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/storage"
)

var (
	ErrNoFiles          = errors.New("at least one file is required")
	ErrTooManyFiles     = errors.New("too many files")
	ErrInvalidExtension = errors.New("file type not allowed")
	ErrFileTooLarge     = errors.New("file too large")
	ErrStorage          = errors.New("photo storage failed")
)

// PhotoUpload is one file of an incoming batch.
type PhotoUpload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// PhotoService validates photo batches and moves their bytes in and out of storage.
type PhotoService struct {
	backend storage.Backend
	cfg     config.UploadConfig
	urlTTL  time.Duration
	now     func() time.Time
}

// NewPhotoService creates a new PhotoService
func NewPhotoService(backend storage.Backend, cfg config.UploadConfig, urlTTL time.Duration) *PhotoService {
	if urlTTL <= 0 {
		urlTTL = constants.SignedURLTTL
	}
	return &PhotoService{
		backend: backend,
		cfg:     cfg,
		urlTTL:  urlTTL,
		now:     time.Now,
	}
}

// MaxFiles is the per-owner photo cap.
func (s *PhotoService) MaxFiles() int {
	return s.cfg.MaxFilesPerTask
}

// Validate checks the whole batch before anything is stored. existing is the
// number of photos the owner already has.
func (s *PhotoService) Validate(existing int64, files []PhotoUpload) error {
	if len(files) == 0 {
		return ErrNoFiles
	}
	if existing+int64(len(files)) > int64(s.cfg.MaxFilesPerTask) {
		return fmt.Errorf("%w: at most %d photos allowed", ErrTooManyFiles, s.cfg.MaxFilesPerTask)
	}
	for _, f := range files {
		if !s.allowed(extension(f.Filename)) {
			return fmt.Errorf("%w: %s", ErrInvalidExtension, f.Filename)
		}
		if f.Size > s.cfg.MaxFileSize {
			return fmt.Errorf("%w: %s exceeds %d MB", ErrFileTooLarge, f.Filename, s.cfg.MaxFileSize/(1024*1024))
		}
	}
	return nil
}

// Store uploads every file under prefix. When any upload fails the objects
// already written are removed and ErrStorage is returned.
func (s *PhotoService) Store(ctx context.Context, prefix string, files []PhotoUpload) ([]models.PhotoFile, error) {
	stored := make([]models.PhotoFile, 0, len(files))
	for _, f := range files {
		photo, err := s.put(ctx, prefix, f)
		if err != nil {
			s.Remove(ctx, storagePaths(stored))
			return nil, fmt.Errorf("%w: %s: %v", ErrStorage, f.Filename, err)
		}
		stored = append(stored, photo)
	}
	return stored, nil
}

func (s *PhotoService) put(ctx context.Context, prefix string, f PhotoUpload) (models.PhotoFile, error) {
	ext := extension(f.Filename)
	key := path.Join(prefix, fmt.Sprintf("%s_%s.%s",
		s.now().UTC().Format("20060102_150405"),
		strings.ReplaceAll(uuid.NewString(), "-", "")[:constants.PhotoKeyRandomSize],
		ext,
	))

	r, err := f.Open()
	if err != nil {
		return models.PhotoFile{}, err
	}
	defer r.Close()

	contentType := contentTypeFor(ext)
	if err := s.backend.Put(ctx, key, r, f.Size, contentType); err != nil {
		return models.PhotoFile{}, err
	}

	return models.PhotoFile{
		StoragePath:  key,
		OriginalName: path.Base(strings.ReplaceAll(f.Filename, "\\", "/")),
		FileSize:     f.Size,
		ContentType:  contentType,
	}, nil
}

// Remove deletes objects best-effort; failures are logged and swallowed.
func (s *PhotoService) Remove(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := s.backend.Remove(ctx, p); err != nil {
			log.Warn().Err(err).Str("path", p).Msg("failed to remove photo from storage")
		}
	}
}

// Open streams a stored photo.
func (s *PhotoService) Open(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	return s.backend.Open(ctx, storagePath)
}

// SignedURL returns a time-limited direct link when the backend supports it.
func (s *PhotoService) SignedURL(ctx context.Context, storagePath string) (string, bool) {
	signer, ok := s.backend.(storage.Signer)
	if !ok {
		return "", false
	}
	u, err := signer.SignedURL(ctx, storagePath, s.urlTTL)
	if err != nil {
		log.Warn().Err(err).Str("path", storagePath).Msg("failed to sign photo url")
		return "", false
	}
	return u, true
}

func (s *PhotoService) allowed(ext string) bool {
	for _, a := range s.cfg.AllowedExtensions {
		if strings.TrimPrefix(a, ".") == ext {
			return true
		}
	}
	return false
}

func extension(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return strings.TrimPrefix(ext, ".")
}

func contentTypeFor(ext string) string {
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

func storagePaths(photos []models.PhotoFile) []string {
	paths := make([]string, 0, len(photos))
	for _, p := range photos {
		paths = append(paths, p.StoragePath)
	}
	return paths
}

func companyPrefix(companyID uint64) string {
	return fmt.Sprintf("company_%d", companyID)
}
