package tags

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"albumus/internal/media/ffmpeg"
	"albumus/internal/metadata"
)

const pictureComment = "METADATA_BLOCK_PICTURE"

// writeOGG merges tags into the existing comments and remuxes path through a
// temp file in the same directory.
func (w *Writer) writeOGG(ctx context.Context, path string, tags metadata.Tags, cover *Cover) error {
	if w.remux == nil {
		return errors.New("no ffmpeg runner configured for ogg tagging")
	}

	comments := map[string]string{}
	if w.readTags != nil {
		existing, err := w.readTags(ctx, path)
		if err != nil {
			w.logger.DebugContext(ctx, "existing ogg tags unavailable", "path", path, "error", err)
		}
		for k, v := range existing {
			comments[strings.ToUpper(k)] = v
		}
	}
	for _, key := range tags.Keys() {
		if name, ok := w.table.vorbisName(key); ok {
			comments[name] = tags[key]
		}
	}
	if cover != nil {
		comments[pictureComment] = encodePictureComment(cover)
	}

	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	metaFile, err := os.CreateTemp(dir, "."+base+".*.ffmeta")
	if err != nil {
		return err
	}
	metaName := metaFile.Name()
	defer os.Remove(metaName)
	if _, err := metaFile.Write(ffmpeg.FormatMetadata(comments)); err != nil {
		metaFile.Close()
		return err
	}
	if err := metaFile.Close(); err != nil {
		return err
	}

	tmpOut := filepath.Join(dir, "."+base+".tagging"+filepath.Ext(path))
	defer os.Remove(tmpOut)
	if _, err := w.remux.Run(ctx, ffmpeg.RemuxArgs(path, metaName, tmpOut), nil); err != nil {
		return fmt.Errorf("remux: %w", err)
	}
	if _, err := os.Stat(tmpOut); err != nil {
		return fmt.Errorf("remux produced no output: %w", err)
	}
	return os.Rename(tmpOut, path)
}

// encodePictureComment renders the FLAC picture structure (without the
// metadata block header) as base64, the form Vorbis comments carry.
func encodePictureComment(cover *Cover) string {
	block := cover.picture().Marshal()
	return base64.StdEncoding.EncodeToString(block.Data)
}
