// Package service holds the portfolio business rules: bounded collections,
// the photo and resume assets, and database health. Persistence is delegated
// to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SRAS2024/About-Me/internal/apperror"
	"github.com/SRAS2024/About-Me/internal/locale"
	"github.com/SRAS2024/About-Me/internal/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// CollectionRepository defines the persistence operations needed by the
// CollectionService. Each Replace call must be atomic.
type CollectionRepository interface {
	ReplaceLinks(ctx context.Context, kind models.LinkKind, links []models.Link) error
	ReplaceTraits(ctx context.Context, traits []models.Trait) error
	ReplaceAccomplishments(ctx context.Context, items []models.Accomplishment) error
	ListLinks(ctx context.Context, kind models.LinkKind) ([]models.Link, error)
	ListTraits(ctx context.Context) ([]models.Trait, error)
	ListAccomplishments(ctx context.Context) ([]models.Accomplishment, error)
}

// AssetCatalog is the read side of the asset store used to build snapshots.
type AssetCatalog interface {
	PhotoVersion(ctx context.Context) (int64, bool, error)
	ListResumes(ctx context.Context) ([]models.ResumeInfo, error)
}

// CollectionService enforces capacity and field rules on the bounded
// collections and assembles the canonical snapshot.
type CollectionService struct {
	repo          CollectionRepository
	assets        AssetCatalog
	validate      *validator.Validate
	log           *zap.Logger
	defaultLocale string
}

// NewCollectionService constructs a CollectionService. A nil validate or log
// is replaced with a default instance.
func NewCollectionService(repo CollectionRepository, assets AssetCatalog, validate *validator.Validate, log *zap.Logger) *CollectionService {
	if validate == nil {
		validate = validator.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CollectionService{
		repo:          repo,
		assets:        assets,
		validate:      validate,
		log:           log,
		defaultLocale: locale.Default,
	}
}

// WithDefaultLocale overrides the locale preferred when resolving resumes.
func (s *CollectionService) WithDefaultLocale(loc string) *CollectionService {
	if loc != "" {
		s.defaultLocale = loc
	}
	return s
}

// ReplaceLinks replaces every link of kind with links.
func (s *CollectionService) ReplaceLinks(ctx context.Context, kind models.LinkKind, links []LinkInput) error {
	if !kind.Valid() {
		return apperror.Validationf(apperror.CodeInvalidKind, "unknown link kind %q", kind)
	}
	group := kind.Group()
	if err := checkCapacity(group, len(links)); err != nil {
		return err
	}

	kept := trimLinks(links)
	out := make([]models.Link, len(kept))
	for i, l := range kept {
		if err := s.validateItem(group, i, l); err != nil {
			return err
		}
		out[i] = models.Link{Label: l.Label, URL: l.URL, Kind: kind, SortOrder: i}
	}

	if err := s.repo.ReplaceLinks(ctx, kind, out); err != nil {
		return s.persistenceError(group, err)
	}
	s.log.Info("collection replaced", zap.String("group", string(group)), zap.Int("items", len(out)))
	return nil
}

// ReplaceTraits replaces the trait list.
func (s *CollectionService) ReplaceTraits(ctx context.Context, traits []TraitInput) error {
	group := models.GroupTraits
	if err := checkCapacity(group, len(traits)); err != nil {
		return err
	}

	texts := make([]string, len(traits))
	for i, t := range traits {
		texts[i] = t.Text
	}
	texts = trimTexts(texts)

	out := make([]models.Trait, len(texts))
	for i, text := range texts {
		if err := s.validateItem(group, i, TraitInput{Text: text}); err != nil {
			return err
		}
		out[i] = models.Trait{Text: text, SortOrder: i}
	}

	if err := s.repo.ReplaceTraits(ctx, out); err != nil {
		return s.persistenceError(group, err)
	}
	s.log.Info("collection replaced", zap.String("group", string(group)), zap.Int("items", len(out)))
	return nil
}

// ReplaceAccomplishments replaces the accomplishment list.
func (s *CollectionService) ReplaceAccomplishments(ctx context.Context, items []AccomplishmentInput) error {
	group := models.GroupAccomplishments
	if err := checkCapacity(group, len(items)); err != nil {
		return err
	}

	texts := make([]string, len(items))
	for i, a := range items {
		texts[i] = a.Text
	}
	texts = trimTexts(texts)

	out := make([]models.Accomplishment, len(texts))
	for i, text := range texts {
		if err := s.validateItem(group, i, AccomplishmentInput{Text: text}); err != nil {
			return err
		}
		out[i] = models.Accomplishment{Text: text, SortOrder: i}
	}

	if err := s.repo.ReplaceAccomplishments(ctx, out); err != nil {
		return s.persistenceError(group, err)
	}
	s.log.Info("collection replaced", zap.String("group", string(group)), zap.Int("items", len(out)))
	return nil
}

// ReplaceLinkGroups replaces both link groups independently and reports each
// outcome. A failure in one group does not prevent the other from saving.
func (s *CollectionService) ReplaceLinkGroups(ctx context.Context, github, website []LinkInput) []models.GroupResult {
	return []models.GroupResult{
		GroupResultOf(models.GroupGitHubLinks, s.ReplaceLinks(ctx, models.LinkGitHub, github)),
		GroupResultOf(models.GroupWebsiteLinks, s.ReplaceLinks(ctx, models.LinkWebsite, website)),
	}
}

// Snapshot returns the canonical state. requestedLocale selects the resume
// locale reported in the snapshot; it may be empty.
func (s *CollectionService) Snapshot(ctx context.Context, requestedLocale string) (models.Snapshot, error) {
	var snap models.Snapshot
	var err error

	if snap.PhotoVersion, snap.PhotoExists, err = s.assets.PhotoVersion(ctx); err != nil {
		return models.Snapshot{}, apperror.Persistence(err)
	}
	if snap.Resumes, err = s.assets.ListResumes(ctx); err != nil {
		return models.Snapshot{}, apperror.Persistence(err)
	}
	if snap.GitHubLinks, err = s.repo.ListLinks(ctx, models.LinkGitHub); err != nil {
		return models.Snapshot{}, apperror.Persistence(err)
	}
	if snap.WebsiteLinks, err = s.repo.ListLinks(ctx, models.LinkWebsite); err != nil {
		return models.Snapshot{}, apperror.Persistence(err)
	}
	if snap.Traits, err = s.repo.ListTraits(ctx); err != nil {
		return models.Snapshot{}, apperror.Persistence(err)
	}
	if snap.Accomplishments, err = s.repo.ListAccomplishments(ctx); err != nil {
		return models.Snapshot{}, apperror.Persistence(err)
	}

	requested := locale.NormalizeOrDefault(requestedLocale)
	snap.ResumeLocale, _ = locale.ResolveWithDefault(requested, s.defaultLocale, snap.ResumeLocales())
	return snap, nil
}

// GroupResultOf converts the outcome of a group replacement to its report.
func GroupResultOf(group models.Group, err error) models.GroupResult {
	if err == nil {
		return models.GroupResult{Group: group, OK: true}
	}
	appErr := apperror.As(err)
	return models.GroupResult{
		Group:   group,
		OK:      false,
		Code:    appErr.Code,
		Message: appErr.Message,
		Kind:    string(appErr.Kind),
	}
}

func checkCapacity(group models.Group, n int) error {
	if limit := group.Max(); n > limit {
		return apperror.Validationf(apperror.CodeCapacityExceeded,
			"%s accepts at most %d items, got %d", group, limit, n)
	}
	return nil
}

func (s *CollectionService) validateItem(group models.Group, index int, item any) error {
	err := s.validate.Struct(item)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperror.Validationf(apperror.CodeFieldTooLong,
			"%s item %d: %s must be at most %s characters",
			group, index+1, strings.ToLower(fe.Field()), fe.Param())
	}
	return apperror.Validation(apperror.CodeInvalidRequest, fmt.Sprintf("%s item %d: %v", group, index+1, err))
}

func (s *CollectionService) persistenceError(group models.Group, err error) error {
	s.log.Error("collection replace failed", zap.String("group", string(group)), zap.Error(err))
	return apperror.Persistence(err)
}
