package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sabrinth/player/internal/domain"
	"github.com/sabrinth/player/internal/ports"
)

// Tag alias tables. Containers disagree wildly on tag naming (ID3 vs MP4
// atoms vs Vorbis comments); lookup goes through normalized keys so
// "ALBUM_ARTIST", "album-artist" and "aART" all land on the same alias.
var (
	titleAliases  = []string{"title", "track", "song", "nam", "©nam"}
	artistAliases = []string{
		"artist", "album_artist", "albumartist", "aART", "©ART",
		"performer", "composer",
	}
	albumAliases   = []string{"album", "©alb"}
	yearAliases    = []string{"date", "year", "creation_time", "originaldate", "release_date"}
	genreAliases   = []string{"genre"}
	bitrateAliases = []string{"bit_rate", "bitrate", "bps"}
)

// Sidecar field candidates, in lookup order. Sidecars come from download
// tooling, so the vocabulary differs from embedded tags.
var (
	sidecarTitleKeys  = []string{"track", "title"}
	sidecarArtistKeys = []string{"artist", "album_artist", "uploader", "channel", "creator"}
	sidecarAlbumKeys  = []string{"album", "playlist_title"}
)

// leadingIndexPattern matches track-number prefixes like "01 - ", "2.",
// "003_" in file names.
var leadingIndexPattern = regexp.MustCompile(`^\s*\d{1,3}\s*[-_.)]\s*`)

// yearPattern finds the first run of exactly four consecutive digits.
var yearPattern = regexp.MustCompile(`\d{4}`)

var nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeTagKey lowercases a tag key and strips everything that is not a
// letter or digit.
func normalizeTagKey(key string) string {
	return nonAlnumPattern.ReplaceAllString(strings.ToLower(key), "")
}

// cleanText replaces NUL bytes with spaces and collapses whitespace runs.
// Embedded tags routinely carry padding NULs from fixed-size frames.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\x00", " ")
	return strings.Join(strings.Fields(s), " ")
}

// extractYear pulls the first 4-digit run out of a free-form date value
// ("2019-03-21", "20190321", "©2019"). Empty when none is present.
func extractYear(s string) string {
	return yearPattern.FindString(s)
}

// lookupAlias returns the first non-empty tag value among the aliases.
// Tag keys in tags must already be normalized.
func lookupAlias(tags map[string]string, aliases []string) string {
	for _, alias := range aliases {
		if v := cleanText(tags[normalizeTagKey(alias)]); v != "" {
			return v
		}
	}
	return ""
}

// filenamePartial derives the baseline metadata from the file name alone:
// strip the extension and any leading track index, turn underscores into
// spaces, and split "Artist - Title" on the first dash-like separator.
// The title is never empty; the artist may be.
func filenamePartial(path string) domain.PartialMetadata {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = leadingIndexPattern.ReplaceAllString(stem, "")
	stem = strings.ReplaceAll(stem, "_", " ")
	stem = cleanText(stem)

	if stem == "" {
		stem = filepath.Base(path)
	}

	artist, title := splitArtistTitle(stem)
	return domain.PartialMetadata{Title: title, Artist: artist}
}

// splitArtistTitle splits "Artist - Title" on the first dash-like
// separator. When no separator is present the whole string is the title.
func splitArtistTitle(s string) (artist, title string) {
	for _, sep := range []string{" - ", " — ", " – "} {
		if artist, title, ok := strings.Cut(s, sep); ok {
			return cleanText(artist), cleanText(title)
		}
	}
	return "", s
}

// probePartial maps a probe result to a metadata contribution. Tags are
// taken from the container first; audio-stream tags fill what the
// container lacks. Duration and bit rate prefer the audio stream's own
// numbers over the container's.
func probePartial(res *ports.ProbeResult) domain.PartialMetadata {
	if res == nil {
		return domain.PartialMetadata{}
	}

	tags := make(map[string]string)
	for key, value := range res.Format.Tags {
		tags[normalizeTagKey(key)] = value
	}

	var audio *ports.ProbeStream
	for i := range res.Streams {
		stream := &res.Streams[i]
		if stream.CodecType == "audio" && audio == nil {
			audio = stream
		}
		for key, value := range stream.Tags {
			norm := normalizeTagKey(key)
			if tags[norm] == "" {
				tags[norm] = value
			}
		}
	}

	partial := domain.PartialMetadata{
		Title:  lookupAlias(tags, titleAliases),
		Artist: lookupAlias(tags, artistAliases),
		Album:  lookupAlias(tags, albumAliases),
		Genre:  lookupAlias(tags, genreAliases),
		Year:   extractYear(lookupAlias(tags, yearAliases)),
	}

	duration := res.Format.Duration
	bitRate := res.Format.BitRate
	if audio != nil {
		if audio.Duration != "" {
			duration = audio.Duration
		}
		if audio.BitRate != "" {
			bitRate = audio.BitRate
		}
	}

	if v, err := strconv.ParseFloat(duration, 64); err == nil && v > 0 {
		partial.DurationSeconds = v
	}
	partial.BitrateKbps = parseBitrateKbps(bitRate)
	if partial.BitrateKbps == 0 {
		partial.BitrateKbps = parseBitrateKbps(lookupAlias(tags, bitrateAliases))
	}

	return partial
}

// parseBitrateKbps converts a bits-per-second string to whole kbps.
// Unparseable input yields 0, never an error.
func parseBitrateKbps(raw string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v <= 0 {
		return 0
	}
	return int(v / 1000)
}

// sidecarPartial reads the track's sidecar info file, when one exists, and
// maps its fields to a metadata contribution. Sidecars are written by
// download tooling next to the audio file; three naming schemes are tried:
//
//	song.mp3.info.json
//	song.info.json
//	song<anything>.info.json
func sidecarPartial(path string) domain.PartialMetadata {
	doc, ok := loadSidecar(path)
	if !ok {
		return domain.PartialMetadata{}
	}

	partial := domain.PartialMetadata{
		Title:  sidecarString(doc, sidecarTitleKeys),
		Artist: sidecarString(doc, sidecarArtistKeys),
		Album:  sidecarString(doc, sidecarAlbumKeys),
		Year:   sidecarYear(doc),
	}

	if genre, ok := doc["genre"].(string); ok {
		partial.Genre = cleanText(genre)
	}
	if partial.Genre == "" {
		if categories, ok := doc["categories"].([]any); ok && len(categories) > 0 {
			if genre, ok := categories[0].(string); ok {
				partial.Genre = cleanText(genre)
			}
		}
	}

	switch v := doc["duration"].(type) {
	case float64:
		if v > 0 {
			partial.DurationSeconds = v
		}
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			partial.DurationSeconds = f
		}
	}

	return partial
}

// loadSidecar finds and parses the first sidecar candidate for path.
func loadSidecar(path string) (map[string]any, bool) {
	stem := strings.TrimSuffix(path, filepath.Ext(path))

	candidates := []string{
		path + ".info.json",
		stem + ".info.json",
	}

	// Prefix scan instead of a glob; stems with glob metacharacters like
	// "track [live]" must still find their sidecars.
	dir := filepath.Dir(path)
	prefix := filepath.Base(stem)
	if entries, err := os.ReadDir(dir); err == nil {
		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".info.json") {
				candidates = append(candidates, filepath.Join(dir, name))
			}
		}
	}

	for _, candidate := range candidates {
		raw, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		return doc, true
	}
	return nil, false
}

// sidecarString returns the first non-empty string value among keys.
func sidecarString(doc map[string]any, keys []string) string {
	for _, key := range keys {
		if s, ok := doc[key].(string); ok {
			if v := cleanText(s); v != "" {
				return v
			}
		}
	}
	return ""
}

// sidecarYear derives a year from the sidecar's date fields: a 4-digit run
// in release_date or upload_date, or the year of a numeric unix timestamp.
func sidecarYear(doc map[string]any) string {
	for _, key := range []string{"release_date", "upload_date"} {
		if s, ok := doc[key].(string); ok {
			if year := extractYear(s); year != "" {
				return year
			}
		}
	}
	if ts, ok := doc["timestamp"].(float64); ok && ts > 0 {
		return strconv.Itoa(time.Unix(int64(ts), 0).UTC().Year())
	}
	return ""
}
