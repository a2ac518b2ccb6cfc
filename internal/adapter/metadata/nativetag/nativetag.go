// Package nativetag reads embedded tags in-process with dhowden/tag.
// It backs up the probe collaborator when that is unavailable, covering
// ID3v1/ID3v2, MP4, and Vorbis comments without an external binary.
package nativetag

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"github.com/sabrinth/player/internal/domain"
	"github.com/sabrinth/player/internal/ports"
)

// Reader reads embedded tags from audio files.
type Reader struct{}

// NewReader creates a tag reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadTags extracts the tag fields present in the file. Files without
// readable tags yield an error wrapping domain.ErrSourceUnavailable.
func (r *Reader) ReadTags(path string) (domain.PartialMetadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return domain.PartialMetadata{}, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil || meta == nil {
		return domain.PartialMetadata{}, fmt.Errorf("%w: no readable tags", domain.ErrSourceUnavailable)
	}

	partial := domain.PartialMetadata{
		Title:  strings.TrimSpace(meta.Title()),
		Artist: strings.TrimSpace(meta.Artist()),
		Album:  strings.TrimSpace(meta.Album()),
		Genre:  strings.TrimSpace(meta.Genre()),
	}
	if year := meta.Year(); year > 0 {
		partial.Year = strconv.Itoa(year)
	}
	return partial, nil
}

// Verify interface implementation
var _ ports.TagReader = (*Reader)(nil)
