package adminclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irkinnovations/portfolio/internal/domain"
)

const bucketURL = "https://cdn.test/images/"

type fakeUploader struct {
	uploads []string
	deleted []string
	failAt  int // 1-based upload number that fails; 0 never fails
}

func (u *fakeUploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if u.failAt > 0 && len(u.uploads)+1 == u.failAt {
		return "", errors.New("network unreachable")
	}
	u.uploads = append(u.uploads, key)
	return bucketURL + key, nil
}

func (u *fakeUploader) KeyFromURL(rawURL string) (string, bool) {
	key, ok := strings.CutPrefix(rawURL, bucketURL)
	return key, ok
}

func (u *fakeUploader) Delete(ctx context.Context, keys ...string) error {
	u.deleted = append(u.deleted, keys...)
	return nil
}

type fakeAPI struct {
	created *domain.ProjectInput
	patched *domain.ProjectPatch
	err     error
}

func (a *fakeAPI) CreateProject(ctx context.Context, input domain.ProjectInput) (*domain.Project, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.created = &input
	return &domain.Project{ID: "new-id", Title: input.Title}, nil
}

func (a *fakeAPI) UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.patched = &patch
	return &domain.Project{ID: id, Title: *patch.Title}, nil
}

func images(n int) []LocalFile {
	out := make([]LocalFile, n)
	for i := range out {
		out[i] = LocalFile{Name: fmt.Sprintf("img%d.png", i), Data: []byte{byte(i)}, ContentType: "image/png"}
	}
	return out
}

func existingProject(galleryLen int) domain.Project {
	p := domain.Project{
		ID:               "p1",
		Title:            "Meter",
		Description:      "Desc",
		ShortDescription: "Short",
		MainImage:        bucketURL + "main.png",
	}
	for i := 0; i < galleryLen; i++ {
		p.DetailImages = append(p.DetailImages, fmt.Sprintf("%sold%d.png", bucketURL, i))
	}
	return p
}

func TestForm_GalleryCapCheckedBeforeUpload(t *testing.T) {
	up := &fakeUploader{}
	f := EditForm(up, existingProject(4))

	err := f.AddGalleryImages(context.Background(), images(5))

	assert.ErrorIs(t, err, ErrGalleryFull)
	assert.Empty(t, up.uploads)
	assert.Len(t, f.Fields.DetailImages, 4)
}

func TestForm_GalleryUploadsInOrder(t *testing.T) {
	up := &fakeUploader{}
	f := EditForm(up, existingProject(4))

	require.NoError(t, f.AddGalleryImages(context.Background(), images(4)))

	require.Len(t, f.Fields.DetailImages, domain.MaxDetailImages)
	for i, key := range up.uploads {
		assert.Equal(t, bucketURL+key, f.Fields.DetailImages[4+i])
		assert.Contains(t, key, fmt.Sprintf("-%d-", 4+i))
		assert.True(t, strings.HasSuffix(key, ".png"))
	}
}

func TestForm_GalleryFailureKeepsEarlierUploads(t *testing.T) {
	up := &fakeUploader{failAt: 3}
	f := NewForm(up)

	err := f.AddGalleryImages(context.Background(), images(5))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "img2.png")
	assert.Len(t, up.uploads, 2)
	assert.Len(t, f.Fields.DetailImages, 2)
}

func TestForm_RemoveGalleryImage(t *testing.T) {
	ctx := context.Background()
	up := &fakeUploader{}
	f := EditForm(up, existingProject(2))
	require.NoError(t, f.AddGalleryImages(ctx, images(1)))
	fresh := f.Fields.DetailImages[2]

	// Stored images are only dropped from the form; the server cleans them up on submit.
	require.NoError(t, f.RemoveGalleryImage(ctx, 0))
	assert.Empty(t, up.deleted)

	require.NoError(t, f.RemoveGalleryImage(ctx, 1))
	key, _ := up.KeyFromURL(fresh)
	assert.Equal(t, []string{key}, up.deleted)
	assert.Equal(t, []string{bucketURL + "old1.png"}, f.Fields.DetailImages)

	assert.ErrorIs(t, f.RemoveGalleryImage(ctx, 5), domain.ErrInvalidInput)
}

func TestForm_ReplaceMainImage(t *testing.T) {
	ctx := context.Background()
	up := &fakeUploader{}
	f := EditForm(up, existingProject(0))

	require.NoError(t, f.UploadMainImage(ctx, images(1)[0]))
	first := f.Fields.MainImage
	assert.Empty(t, up.deleted, "stored main image is kept until submit")

	require.NoError(t, f.UploadMainImage(ctx, images(1)[0]))
	key, _ := up.KeyFromURL(first)
	assert.Equal(t, []string{key}, up.deleted)
	assert.NotEqual(t, first, f.Fields.MainImage)
}

func TestForm_SubmitCreate(t *testing.T) {
	ctx := context.Background()
	up := &fakeUploader{}
	api := &fakeAPI{}
	f := NewForm(up)
	f.Fields.Title = "Meter"
	f.Fields.Description = "Desc"
	f.Fields.ShortDescription = "Short"
	require.NoError(t, f.UploadMainImage(ctx, images(1)[0]))

	p, err := f.Submit(ctx, api)
	require.NoError(t, err)
	assert.Equal(t, "new-id", p.ID)
	require.NotNil(t, api.created)
	assert.Equal(t, f.Fields.MainImage, api.created.MainImage)
	assert.True(t, f.Editing())

	// Submitted images belong to the project now.
	f.Abandon(ctx)
	assert.Empty(t, up.deleted)
}

func TestForm_SubmitUpdateSendsAllFields(t *testing.T) {
	api := &fakeAPI{}
	f := EditForm(&fakeUploader{}, existingProject(2))
	f.Fields.Title = "Renamed"

	_, err := f.Submit(context.Background(), api)
	require.NoError(t, err)
	require.NotNil(t, api.patched)
	assert.Equal(t, "Renamed", *api.patched.Title)
	assert.Len(t, *api.patched.DetailImages, 2)
}

func TestForm_SubmitFailureKeepsForm(t *testing.T) {
	ctx := context.Background()
	up := &fakeUploader{}
	f := NewForm(up)
	require.NoError(t, f.AddGalleryImages(ctx, images(2)))

	_, err := f.Submit(ctx, &fakeAPI{err: errors.New("400 Please add all required fields")})
	require.Error(t, err)
	assert.Len(t, f.Fields.DetailImages, 2)
	assert.False(t, f.Editing())

	f.Abandon(ctx)
	assert.Len(t, up.deleted, 2)
}
