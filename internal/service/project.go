package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/irkinnovations/portfolio/internal/domain"
)

// ProjectStore defines the project data access interface consumed by ProjectService.
type ProjectStore interface {
	List(ctx context.Context) ([]domain.Project, error)
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	Create(ctx context.Context, p domain.Project) (*domain.Project, error)
	Update(ctx context.Context, p domain.Project) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

// AssetStore is the object storage bucket holding project images.
type AssetStore interface {
	// KeyFromURL returns the object key of a public URL that belongs to the bucket.
	KeyFromURL(rawURL string) (string, bool)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// ProjectService implements project management.
type ProjectService struct {
	projects ProjectStore
	assets   AssetStore
	now      func() time.Time
}

// NewProjectService creates a new ProjectService.
// assets may be nil, in which case image URLs are only checked for shape.
func NewProjectService(projects ProjectStore, assets AssetStore) *ProjectService {
	return &ProjectService{projects: projects, assets: assets, now: time.Now}
}

// List returns every project, newest first.
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	return s.projects.List(ctx)
}

// Get retrieves a project by ID.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.FindByID(ctx, id)
}

// Create validates the input and persists a new project.
func (s *ProjectService) Create(ctx context.Context, input domain.ProjectInput) (*domain.Project, error) {
	now := s.timestamp()
	p := domain.Project{
		ID:               uuid.NewString(),
		Title:            strings.TrimSpace(input.Title),
		Description:      strings.TrimSpace(input.Description),
		ShortDescription: strings.TrimSpace(input.ShortDescription),
		MainImage:        strings.TrimSpace(input.MainImage),
		DetailImages:     trimAll(input.DetailImages),
		LiveLink:         strings.TrimSpace(input.LiveLink),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.check(ctx, p, nil); err != nil {
		return nil, err
	}

	created, err := s.projects.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	slog.Info("project created", "project_id", created.ID, "title", created.Title)
	return created, nil
}

// Update merges patch into the stored project. Fields absent from the patch keep their values.
func (s *ProjectService) Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error) {
	existing, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := trimPatch(patch).Apply(*existing)
	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	merged.UpdatedAt = s.timestamp()

	if err := s.check(ctx, merged, existing); err != nil {
		return nil, err
	}

	updated, err := s.projects.Update(ctx, merged)
	if err != nil {
		return nil, err
	}

	slog.Info("project updated", "project_id", updated.ID)
	s.removeAssets(ctx, updated.ID, dropped(existing.ImageURLs(), updated.ImageURLs()))
	return updated, nil
}

// Delete permanently removes a project and its images.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	existing, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("project deleted", "project_id", id)
	s.removeAssets(ctx, id, existing.ImageURLs())
	return nil
}

func (s *ProjectService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// check validates p and, when a bucket is configured, that every image it
// references and prev does not is a stored object.
func (s *ProjectService) check(ctx context.Context, p domain.Project, prev *domain.Project) error {
	if err := validateProject(p); err != nil {
		return err
	}
	if s.assets == nil {
		return nil
	}

	known := map[string]bool{}
	if prev != nil {
		for _, u := range prev.ImageURLs() {
			known[u] = true
		}
	}

	ve := &domain.ValidationError{}
	if !known[p.MainImage] {
		msg, err := s.checkAsset(ctx, p.MainImage)
		if err != nil {
			return err
		}
		if msg != "" {
			ve.Add("mainImage", msg)
		}
	}
	for i, u := range p.DetailImages {
		if known[u] {
			continue
		}
		msg, err := s.checkAsset(ctx, u)
		if err != nil {
			return err
		}
		if msg != "" {
			ve.Add(fmt.Sprintf("detailImages.%d", i), msg)
		}
	}
	return ve.Err()
}

func (s *ProjectService) checkAsset(ctx context.Context, rawURL string) (string, error) {
	key, ok := s.assets.KeyFromURL(rawURL)
	if !ok {
		return "must reference the image bucket", nil
	}
	exists, err := s.assets.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: check %s: %v", domain.ErrStorage, key, err)
	}
	if !exists {
		return "image has not been uploaded", nil
	}
	return "", nil
}

func (s *ProjectService) removeAssets(ctx context.Context, projectID string, urls []string) {
	if s.assets == nil || len(urls) == 0 {
		return
	}

	keys := make([]string, 0, len(urls))
	for _, u := range urls {
		if key, ok := s.assets.KeyFromURL(u); ok {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return
	}

	if err := s.assets.Delete(ctx, keys...); err != nil {
		slog.Warn("failed to remove project images", "project_id", projectID, "keys", keys, "error", err)
		return
	}
	slog.Info("project images removed", "project_id", projectID, "count", len(keys))
}

func validateProject(p domain.Project) error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Description, validation.Required),
		validation.Field(&p.ShortDescription, validation.Required),
		validation.Field(&p.MainImage, validation.Required, is.URL, validation.By(httpURL)),
		validation.Field(&p.DetailImages,
			validation.Length(0, domain.MaxDetailImages).Error(fmt.Sprintf("must contain at most %d images", domain.MaxDetailImages)),
			validation.Each(validation.Required, is.URL, validation.By(httpURL)),
		),
		validation.Field(&p.LiveLink, is.URL, validation.By(httpURL)),
	)
	return toValidationError(err)
}

// httpURL requires an absolute http or https URL.
func httpURL(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an absolute http(s) URL")
	}
	return nil
}

// toValidationError converts ozzo field errors into a domain.ValidationError.
func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	ve := &domain.ValidationError{}
	for field, fieldErr := range errs {
		ve.Add(field, fieldErr.Error())
	}
	ve.Sort()
	return ve.Err()
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func trimPatch(p domain.ProjectPatch) domain.ProjectPatch {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		t := strings.TrimSpace(*s)
		return &t
	}
	out := domain.ProjectPatch{
		Title:            trim(p.Title),
		Description:      trim(p.Description),
		ShortDescription: trim(p.ShortDescription),
		MainImage:        trim(p.MainImage),
		LiveLink:         trim(p.LiveLink),
	}
	if p.DetailImages != nil {
		images := trimAll(*p.DetailImages)
		out.DetailImages = &images
	}
	return out
}

// dropped returns the entries of before that are missing from after.
func dropped(before, after []string) []string {
	keep := make(map[string]bool, len(after))
	for _, u := range after {
		keep[u] = true
	}
	var out []string
	for _, u := range before {
		if !keep[u] {
			out = append(out, u)
		}
	}
	return out
}
