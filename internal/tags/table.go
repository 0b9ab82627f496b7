package tags

import (
	"fmt"
	"strings"

	"albumus/internal/metadata"
)

// Field names one tag key in each container scheme.
type Field struct {
	ID3    string
	Vorbis string
}

// Table maps internal tag keys onto container fields.
type Table map[string]Field

// DefaultTable covers every recognized tag key.
var DefaultTable = Table{
	metadata.KeyTitle:       {ID3: "TIT2", Vorbis: "TITLE"},
	metadata.KeyAlbum:       {ID3: "TALB", Vorbis: "ALBUM"},
	metadata.KeyArtist:      {ID3: "TPE1", Vorbis: "ARTIST"},
	metadata.KeyAlbumArtist: {ID3: "TPE2", Vorbis: "ALBUMARTIST"},
	metadata.KeyDate:        {ID3: "TDRC", Vorbis: "DATE"},
	metadata.KeyComment:     {ID3: "COMM", Vorbis: "COMMENT"},
	metadata.KeyGenre:       {ID3: "TCON", Vorbis: "GENRE"},
	metadata.KeyTrackNumber: {ID3: "TRCK", Vorbis: "TRACKNUMBER"},
	metadata.KeyComposer:    {ID3: "TCOM", Vorbis: "COMPOSER"},
	metadata.KeyCopyright:   {ID3: "TCOP", Vorbis: "COPYRIGHT"},
}

// Validate checks frame IDs and Vorbis names are well formed and unique.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("tag table is empty")
	}
	id3Seen := map[string]string{}
	vorbisSeen := map[string]string{}
	for key, field := range t {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("tag table: empty key")
		}
		if !validFrameID(field.ID3) {
			return fmt.Errorf("tag table: %s: invalid ID3 frame %q", key, field.ID3)
		}
		if field.ID3 != "COMM" && field.ID3[0] != 'T' {
			return fmt.Errorf("tag table: %s: frame %s is not a text frame", key, field.ID3)
		}
		if !validVorbisName(field.Vorbis) {
			return fmt.Errorf("tag table: %s: invalid Vorbis field %q", key, field.Vorbis)
		}
		if other, dup := id3Seen[field.ID3]; dup {
			return fmt.Errorf("tag table: %s and %s both map to %s", other, key, field.ID3)
		}
		if other, dup := vorbisSeen[field.Vorbis]; dup {
			return fmt.Errorf("tag table: %s and %s both map to %s", other, key, field.Vorbis)
		}
		id3Seen[field.ID3] = key
		vorbisSeen[field.Vorbis] = key
	}
	return nil
}

// vorbisName returns the comment field for key. Keys outside the table pass
// through uppercased so custom tags survive in Vorbis containers.
func (t Table) vorbisName(key string) (string, bool) {
	if field, ok := t[key]; ok {
		return field.Vorbis, true
	}
	name := strings.ToUpper(strings.TrimSpace(key))
	if !validVorbisName(name) {
		return "", false
	}
	return name, true
}

func validFrameID(id string) bool {
	if len(id) != 4 {
		return false
	}
	for _, r := range id {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// Vorbis field names are printable ASCII 0x20 through 0x7D except '='.
func validVorbisName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x20 || c > 0x7D || c == '=' {
			return false
		}
	}
	return true
}
