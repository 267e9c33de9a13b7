package adminclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/irkinnovations/portfolio/internal/domain"
	"github.com/irkinnovations/portfolio/internal/storage"
)

// ErrGalleryFull is returned when a batch would push the gallery past domain.MaxDetailImages.
var ErrGalleryFull = fmt.Errorf("gallery is limited to %d images", domain.MaxDetailImages)

// Uploader stores image bytes and hands back public URLs.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	KeyFromURL(rawURL string) (string, bool)
	Delete(ctx context.Context, keys ...string) error
}

// ProjectAPI is the part of Client used to submit a form.
type ProjectAPI interface {
	CreateProject(ctx context.Context, input domain.ProjectInput) (*domain.Project, error)
	UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error)
}

// Form is an in-progress create or edit of a project.
//
// Images are uploaded as soon as they are picked; the project record is only
// written on Submit. Images uploaded and then removed before Submit are
// deleted from the bucket.
type Form struct {
	// Fields holds the values that will be submitted.
	Fields domain.ProjectInput

	id       string
	uploader Uploader
	session  map[string]bool
}

// NewForm starts a form for a new project.
func NewForm(uploader Uploader) *Form {
	return &Form{uploader: uploader, session: map[string]bool{}}
}

// EditForm starts a form pre-filled from p.
func EditForm(uploader Uploader, p domain.Project) *Form {
	f := NewForm(uploader)
	f.id = p.ID
	f.Fields = domain.ProjectInput{
		Title:            p.Title,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		MainImage:        p.MainImage,
		DetailImages:     append([]string(nil), p.DetailImages...),
		LiveLink:         p.LiveLink,
	}
	return f
}

// Editing reports whether Submit updates an existing project.
func (f *Form) Editing() bool {
	return f.id != ""
}

// UploadMainImage uploads file and makes it the main image.
func (f *Form) UploadMainImage(ctx context.Context, file LocalFile) error {
	url, err := f.upload(ctx, file, -1)
	if err != nil {
		return err
	}
	previous := f.Fields.MainImage
	f.Fields.MainImage = url
	f.discard(ctx, previous)
	return nil
}

// AddGalleryImages uploads files one at a time, in order, appending each URL to
// the gallery. A batch that would exceed the cap is rejected before any upload.
// When an upload fails, the files before it stay in the gallery and the rest
// are skipped.
func (f *Form) AddGalleryImages(ctx context.Context, files []LocalFile) error {
	if len(f.Fields.DetailImages)+len(files) > domain.MaxDetailImages {
		return fmt.Errorf("%w: have %d, adding %d", ErrGalleryFull, len(f.Fields.DetailImages), len(files))
	}

	for _, file := range files {
		url, err := f.upload(ctx, file, len(f.Fields.DetailImages))
		if err != nil {
			return err
		}
		f.Fields.DetailImages = append(f.Fields.DetailImages, url)
	}
	return nil
}

// RemoveGalleryImage drops the image at index from the gallery.
func (f *Form) RemoveGalleryImage(ctx context.Context, index int) error {
	if index < 0 || index >= len(f.Fields.DetailImages) {
		return fmt.Errorf("%w: no gallery image at %d", domain.ErrInvalidInput, index)
	}
	url := f.Fields.DetailImages[index]
	f.Fields.DetailImages = append(f.Fields.DetailImages[:index:index], f.Fields.DetailImages[index+1:]...)
	f.discard(ctx, url)
	return nil
}

// Submit creates or updates the project. The form is left intact on failure
// so it can be corrected and submitted again.
func (f *Form) Submit(ctx context.Context, api ProjectAPI) (*domain.Project, error) {
	var (
		p   *domain.Project
		err error
	)
	if f.Editing() {
		p, err = api.UpdateProject(ctx, f.id, f.patch())
	} else {
		p, err = api.CreateProject(ctx, f.Fields)
	}
	if err != nil {
		return nil, err
	}

	f.id = p.ID
	f.session = map[string]bool{}
	return p, nil
}

// Abandon deletes every image uploaded by this form that was never submitted.
func (f *Form) Abandon(ctx context.Context) {
	for url := range f.session {
		f.discard(ctx, url)
	}
}

func (f *Form) patch() domain.ProjectPatch {
	fields := f.Fields
	images := append([]string{}, fields.DetailImages...)
	return domain.ProjectPatch{
		Title:            &fields.Title,
		Description:      &fields.Description,
		ShortDescription: &fields.ShortDescription,
		MainImage:        &fields.MainImage,
		DetailImages:     &images,
		LiveLink:         &fields.LiveLink,
	}
}

func (f *Form) upload(ctx context.Context, file LocalFile, index int) (string, error) {
	key := storage.NewKey(file.Name, index)
	url, err := f.uploader.Upload(ctx, key, file.Data, file.ContentType)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", file.Name, err)
	}
	f.session[url] = true
	return url, nil
}

// discard deletes url from the bucket if this form uploaded it.
func (f *Form) discard(ctx context.Context, url string) {
	if url == "" || !f.session[url] {
		return
	}
	delete(f.session, url)

	key, ok := f.uploader.KeyFromURL(url)
	if !ok {
		return
	}
	if err := f.uploader.Delete(ctx, key); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("failed to delete discarded image", "key", key, "error", err)
	}
}
