package storage

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewKey returns an object key for an uploaded file:
// <unix millis>[-<index>]-<random>[.<ext>].
// A negative index omits the index segment.
func NewKey(filename string, index int) string {
	return newKey(time.Now(), filename, index)
}

func newKey(now time.Time, filename string, index int) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	if index >= 0 {
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(index))
	}
	b.WriteByte('-')
	b.WriteString(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")); ext != "" {
		b.WriteByte('.')
		b.WriteString(ext)
	}
	return b.String()
}
