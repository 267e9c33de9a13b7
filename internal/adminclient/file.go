package adminclient

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNotImage is returned for files whose content is not an image.
var ErrNotImage = errors.New("not an image")

// LocalFile is an image read from disk, ready for upload.
type LocalFile struct {
	Name        string
	Data        []byte
	ContentType string
}

// ReadImage loads path and sniffs its content type.
func ReadImage(path string) (LocalFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LocalFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	return NewImage(filepath.Base(path), data)
}

// NewImage wraps in-memory bytes, rejecting anything that is not an image.
// A name without an extension gets the one matching the detected type.
func NewImage(name string, data []byte) (LocalFile, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return LocalFile{}, fmt.Errorf("%w: %s is %s", ErrNotImage, name, mt.String())
	}
	if filepath.Ext(name) == "" {
		name += mt.Extension()
	}
	return LocalFile{Name: name, Data: data, ContentType: mt.String()}, nil
}
