package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"albumus/internal/faults"
)

// Recognized tag keys.
const (
	KeyTitle       = "title"
	KeyAlbum       = "album"
	KeyArtist      = "artist"
	KeyAlbumArtist = "album_artist"
	KeyDate        = "date"
	KeyComment     = "comment"
	KeyGenre       = "genre"
	KeyTrackNumber = "tracknumber"
	KeyComposer    = "composer"
	KeyCopyright   = "copyright"
)

// Tags maps tag names to string values.
type Tags map[string]string

// Clone returns an independent copy.
func (t Tags) Clone() Tags {
	out := make(Tags, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Keys returns the tag names in sorted order.
func (t Tags) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Paths names the three metadata files of an album unit.
type Paths struct {
	Artist string
	Album  string
	Track  string
}

// Resolve merges artist, album and track layers for sourceFilename. ok is
// false when the merged tags carry no track number. Read, parse and track
// number errors wrap faults.ErrMetadata.
func Resolve(paths Paths, sourceFilename string, totalTracks int) (Tags, string, bool, error) {
	artist, err := loadFlat(paths.Artist)
	if err != nil {
		return nil, "", false, err
	}
	album, err := loadFlat(paths.Album)
	if err != nil {
		return nil, "", false, err
	}
	tracks, err := loadTracks(paths.Track)
	if err != nil {
		return nil, "", false, err
	}
	track, err := trackLayer(paths.Track, tracks, sourceFilename)
	if err != nil {
		return nil, "", false, err
	}
	return Merge(artist, album, track, totalTracks)
}

// Merge overlays the three layers and normalizes the track number.
func Merge(artist, album, track Tags, totalTracks int) (Tags, string, bool, error) {
	merged := make(Tags, len(artist)+len(album)+len(track))
	for _, layer := range []Tags{artist, album, track} {
		for k, v := range layer {
			merged[k] = v
		}
	}
	raw, present := merged[KeyTrackNumber]
	if !present {
		return merged, "", false, nil
	}
	padded, err := PadTrackNumber(raw, totalTracks)
	if err != nil {
		return nil, "", false, err
	}
	merged[KeyTrackNumber] = padded
	return merged, padded, true, nil
}

// PadTrackNumber parses raw as a non-negative integer and zero-fills it to the
// digit count of totalTracks.
func PadTrackNumber(raw string, totalTracks int) (string, error) {
	trimmed := strings.TrimSpace(raw)
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return "", faults.Wrap(faults.ErrMetadata, "metadata", "tracknumber", fmt.Sprintf("%q is not an integer", raw), nil)
	}
	if n < 0 {
		return "", faults.Wrap(faults.ErrMetadata, "metadata", "tracknumber", fmt.Sprintf("%d is negative", n), nil)
	}
	width := len(strconv.Itoa(totalTracks))
	return fmt.Sprintf("%0*d", width, n), nil
}

// trackLayer decodes only the entry for sourceFilename, matching NFC forms of
// both the key and the filename so decomposed names still resolve. A
// malformed sibling entry does not affect this track.
func trackLayer(path string, tracks map[string]json.RawMessage, sourceFilename string) (Tags, error) {
	raw, ok := tracks[sourceFilename]
	if !ok {
		want := norm.NFC.String(sourceFilename)
		for key, candidate := range tracks {
			if norm.NFC.String(key) == want {
				raw, ok = candidate, true
				break
			}
		}
	}
	if !ok {
		return Tags{}, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, faults.Wrap(faults.ErrMetadata, "metadata", "parse", path+": "+sourceFilename, err)
	}
	return stringify(path, fields)
}

func loadFlat(path string) (Tags, error) {
	var doc map[string]json.RawMessage
	if err := readJSON(path, &doc); err != nil {
		return nil, err
	}
	return stringify(path, doc)
}

func loadTracks(path string) (map[string]json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := readJSON(path, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func readJSON(path string, dst any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return faults.Wrap(faults.ErrMetadata, "metadata", "read", path, err)
	}
	if err := json.Unmarshal(content, dst); err != nil {
		return faults.Wrap(faults.ErrMetadata, "metadata", "parse", path, err)
	}
	return nil
}

// stringify turns JSON scalars into tag strings. Nulls are dropped; arrays
// and objects keep their compact JSON form.
func stringify(path string, doc map[string]json.RawMessage) (Tags, error) {
	tags := make(Tags, len(doc))
	for key, raw := range doc {
		trimmed := bytes.TrimSpace(raw)
		switch {
		case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
			continue
		case trimmed[0] == '"':
			var s string
			if err := json.Unmarshal(trimmed, &s); err != nil {
				return nil, faults.Wrap(faults.ErrMetadata, "metadata", "parse", path+": "+key, err)
			}
			tags[key] = s
		case trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9'):
			tags[key] = formatNumber(string(trimmed))
		default:
			var buf bytes.Buffer
			if err := json.Compact(&buf, trimmed); err != nil {
				return nil, faults.Wrap(faults.ErrMetadata, "metadata", "parse", path+": "+key, err)
			}
			tags[key] = buf.String()
		}
	}
	return tags, nil
}

// formatNumber renders integral JSON numbers without a fraction so 3.0 and
// 3e0 both become "3".
func formatNumber(literal string) string {
	if _, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return literal
	}
	r, ok := new(big.Rat).SetString(literal)
	if !ok {
		return literal
	}
	if r.IsInt() {
		return r.Num().String()
	}
	return literal
}
