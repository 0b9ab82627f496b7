package tags

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	flac "github.com/go-flac/go-flac"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"

	"albumus/internal/fileutil"
	"albumus/internal/metadata"
)

const vendorString = "albumus"

func (w *Writer) writeFLAC(path string, tags metadata.Tags, cover *Cover) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	file, err := flac.ParseBytes(bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("parse flac: %w", err)
	}

	if len(tags) > 0 {
		if err := w.applyVorbisComment(file, tags); err != nil {
			return err
		}
	}
	if cover != nil {
		replaceFrontCover(file, cover)
	}
	return fileutil.WriteAtomic(path, file.Marshal(), 0o644)
}

// applyVorbisComment replaces the named fields in the existing comment block,
// keeping every other field, or adds a block when none exists.
func (w *Writer) applyVorbisComment(file *flac.File, tags metadata.Tags) error {
	var comment *flacvorbis.MetaDataBlockVorbisComment
	index := -1
	for i, block := range file.Meta {
		if block.Type != flac.VorbisComment {
			continue
		}
		parsed, err := flacvorbis.ParseFromMetaDataBlock(*block)
		if err != nil {
			return fmt.Errorf("parse vorbis comment: %w", err)
		}
		comment, index = parsed, i
		break
	}
	if comment == nil {
		comment = flacvorbis.New()
		comment.Vendor = vendorString
	}

	for _, key := range tags.Keys() {
		name, ok := w.table.vorbisName(key)
		if !ok {
			continue
		}
		comment.Comments = withoutField(comment.Comments, name)
		if err := comment.Add(name, tags[key]); err != nil {
			return fmt.Errorf("add %s: %w", name, err)
		}
	}

	block := comment.Marshal()
	if index >= 0 {
		file.Meta[index] = &block
	} else {
		file.Meta = append(file.Meta, &block)
	}
	return nil
}

// replaceFrontCover drops existing front-cover pictures and appends cover.
func replaceFrontCover(file *flac.File, cover *Cover) {
	kept := file.Meta[:0]
	for _, block := range file.Meta {
		if block.Type == flac.Picture {
			if pic, err := flacpicture.ParseFromMetaDataBlock(*block); err == nil && pic.PictureType == flacpicture.PictureTypeFrontCover {
				continue
			}
		}
		kept = append(kept, block)
	}
	block := cover.picture().Marshal()
	file.Meta = append(kept, &block)
}

func withoutField(comments []string, name string) []string {
	prefix := strings.ToUpper(name) + "="
	kept := comments[:0]
	for _, c := range comments {
		if len(c) >= len(prefix) && strings.ToUpper(c[:len(prefix)]) == prefix {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}
