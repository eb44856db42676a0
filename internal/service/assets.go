package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/SRAS2024/About-Me/internal/apperror"
	"github.com/SRAS2024/About-Me/internal/imaging"
	"github.com/SRAS2024/About-Me/internal/locale"
	"github.com/SRAS2024/About-Me/internal/models"
	"github.com/SRAS2024/About-Me/internal/repository"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const (
	// DefaultMaxResumeBytes bounds an uploaded resume.
	DefaultMaxResumeBytes = 16 << 20
	// DefaultPhotoFilename is stored when an upload carries no name.
	DefaultPhotoFilename = "profile.jpg"

	pdfMimeType = "application/pdf"
)

// AssetRepository defines the persistence operations needed by the AssetService.
type AssetRepository interface {
	PutPhoto(ctx context.Context, p models.Photo) (int64, error)
	DeletePhoto(ctx context.Context) error
	GetPhoto(ctx context.Context) (*models.Photo, error)
	PhotoVersion(ctx context.Context) (int64, bool, error)
	PutResume(ctx context.Context, res models.Resume) error
	DeleteResume(ctx context.Context, locale string) (bool, error)
	GetResume(ctx context.Context, locale string) (*models.Resume, error)
	ListResumes(ctx context.Context) ([]models.ResumeInfo, error)
}

// PhotoProcessor optimizes uploaded photo bytes.
type PhotoProcessor interface {
	Process(ctx context.Context, raw []byte) (imaging.Result, error)
}

// PhotoInfo describes a stored photo.
type PhotoInfo struct {
	Width   int   `json:"width"`
	Height  int   `json:"height"`
	Version int64 `json:"version"`
}

// AssetService stores the single profile photo and one resume per locale.
type AssetService struct {
	repo           AssetRepository
	photos         PhotoProcessor
	log            *zap.Logger
	MaxResumeBytes int
	DefaultLocale  string
}

// NewAssetService constructs an AssetService.
func NewAssetService(repo AssetRepository, photos PhotoProcessor, log *zap.Logger) *AssetService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AssetService{
		repo:           repo,
		photos:         photos,
		log:            log,
		MaxResumeBytes: DefaultMaxResumeBytes,
		DefaultLocale:  locale.Default,
	}
}

// PutPhoto optimizes raw and replaces the stored photo with it.
func (s *AssetService) PutPhoto(ctx context.Context, filename string, raw []byte) (PhotoInfo, error) {
	res, err := s.photos.Process(ctx, raw)
	if err != nil {
		s.log.Warn("photo rejected", zap.Error(err))
		return PhotoInfo{}, err
	}

	name := cleanFilename(filename)
	if name == "" {
		name = DefaultPhotoFilename
	}
	version, err := s.repo.PutPhoto(ctx, models.Photo{
		Filename: name,
		MimeType: res.MimeType,
		Bytes:    res.Bytes,
		Width:    res.Width,
		Height:   res.Height,
	})
	if err != nil {
		s.log.Error("store photo failed", zap.Error(err))
		return PhotoInfo{}, apperror.Persistence(err)
	}

	s.log.Info("photo stored",
		zap.Int("width", res.Width),
		zap.Int("height", res.Height),
		zap.Int("bytes", len(res.Bytes)),
		zap.Int64("version", version),
	)
	return PhotoInfo{Width: res.Width, Height: res.Height, Version: version}, nil
}

// DeletePhoto removes the photo. It succeeds when no photo exists.
func (s *AssetService) DeletePhoto(ctx context.Context) error {
	if err := s.repo.DeletePhoto(ctx); err != nil {
		return apperror.Persistence(err)
	}
	return nil
}

// GetPhotoBytes returns the stored photo.
func (s *AssetService) GetPhotoBytes(ctx context.Context) (*models.Photo, error) {
	p, err := s.repo.GetPhoto(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("no photo uploaded")
	}
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	return p, nil
}

// PutResume stores raw as the resume for rawLocale, replacing any resume
// already stored for that locale.
func (s *AssetService) PutResume(ctx context.Context, rawLocale, filename string, raw []byte) error {
	loc, err := locale.Normalize(rawLocale)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return apperror.Validation(apperror.CodeEmptyField, "empty file")
	}
	if s.MaxResumeBytes > 0 && len(raw) > s.MaxResumeBytes {
		return apperror.Validationf(apperror.CodeTooLarge, "resume exceeds %d bytes", s.MaxResumeBytes)
	}
	if detected := mimetype.Detect(raw); !detected.Is(pdfMimeType) {
		return apperror.Validationf(apperror.CodeUnsupportedFormat, "resume must be a PDF, got %s", detected.String())
	}

	name := cleanFilename(filename)
	if name == "" {
		name = fmt.Sprintf("resume_%s.pdf", loc)
	}
	err = s.repo.PutResume(ctx, models.Resume{
		Locale:   loc,
		Filename: name,
		MimeType: pdfMimeType,
		Bytes:    raw,
	})
	if err != nil {
		s.log.Error("store resume failed", zap.String("locale", loc), zap.Error(err))
		return apperror.Persistence(err)
	}
	s.log.Info("resume stored", zap.String("locale", loc), zap.Int("bytes", len(raw)))
	return nil
}

// DeleteResume removes the resume for rawLocale. It returns NotFound when
// there is none.
func (s *AssetService) DeleteResume(ctx context.Context, rawLocale string) error {
	loc, err := locale.Normalize(rawLocale)
	if err != nil {
		return err
	}
	existed, err := s.repo.DeleteResume(ctx, loc)
	if err != nil {
		return apperror.Persistence(err)
	}
	if !existed {
		return apperror.NotFound(fmt.Sprintf("no resume for locale %s", loc))
	}
	s.log.Info("resume deleted", zap.String("locale", loc))
	return nil
}

// GetResumeBytes returns the resume stored for exactly loc.
func (s *AssetService) GetResumeBytes(ctx context.Context, loc string) (*models.Resume, error) {
	res, err := s.repo.GetResume(ctx, loc)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound(fmt.Sprintf("no resume for locale %s", loc))
	}
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	return res, nil
}

// ListResumeLocales returns the locales that have a resume, sorted.
func (s *AssetService) ListResumeLocales(ctx context.Context) ([]string, error) {
	infos, err := s.repo.ListResumes(ctx)
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	out := make([]string, 0, len(infos))
	for _, info := range infos {
		out = append(out, info.Locale)
	}
	return out, nil
}

// ResolveResume returns the resume to serve for requested, falling back
// through the default locale to the smallest available one.
func (s *AssetService) ResolveResume(ctx context.Context, requested string) (*models.Resume, error) {
	return s.ResolveResumeForRequest(ctx, requested, "")
}

// ResolveResumeForRequest is ResolveResume for an HTTP request. When
// requested is empty the Accept-Language header picks the locale.
func (s *AssetService) ResolveResumeForRequest(ctx context.Context, requested, acceptLanguage string) (*models.Resume, error) {
	available, err := s.ListResumeLocales(ctx)
	if err != nil {
		return nil, err
	}

	want := ""
	if strings.TrimSpace(requested) != "" {
		want = locale.NormalizeOrDefault(requested)
	} else if acceptLanguage != "" {
		want = locale.Preferred(acceptLanguage, available)
	}
	if want == "" {
		want = s.DefaultLocale
	}

	loc, ok := locale.ResolveWithDefault(want, s.DefaultLocale, available)
	if !ok {
		return nil, apperror.NotFound("no resume uploaded")
	}
	return s.GetResumeBytes(ctx, loc)
}

// cleanFilename strips any directory part a browser may send.
func cleanFilename(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return ""
	}
	base := filepath.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}
