package tags

import (
	"context"
	"fmt"
	"log/slog"

	"albumus/internal/faults"
	"albumus/internal/logging"
	"albumus/internal/media"
	"albumus/internal/metadata"
)

// Remuxer runs ffmpeg for the ogg tag rewrite.
type Remuxer interface {
	Run(ctx context.Context, args []string, onLine func(string)) (int, error)
}

// TagReader returns the existing audio stream tags of a file. It is used to
// keep ogg comments that a rewrite would otherwise drop.
type TagReader func(ctx context.Context, path string) (map[string]string, error)

// Option configures the writer.
type Option func(*Writer)

// WithTable replaces the tag table.
func WithTable(table Table) Option {
	return func(w *Writer) {
		w.table = table
	}
}

// WithRemuxer sets the ffmpeg runner used for ogg outputs.
func WithRemuxer(r Remuxer) Option {
	return func(w *Writer) {
		w.remux = r
	}
}

// WithTagReader sets how existing ogg tags are read before a rewrite.
func WithTagReader(read TagReader) Option {
	return func(w *Writer) {
		w.readTags = read
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Writer applies tags and cover art per container format.
type Writer struct {
	table    Table
	remux    Remuxer
	readTags TagReader
	logger   *slog.Logger
}

// NewWriter validates the tag table and returns a writer.
func NewWriter(opts ...Option) (*Writer, error) {
	w := &Writer{table: DefaultTable, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.table.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Write applies tags and cover (either may be empty) in a single update of
// path. wav outputs are left untouched.
func (w *Writer) Write(ctx context.Context, path string, format media.Format, tags metadata.Tags, cover *Cover) error {
	if len(tags) == 0 && cover == nil {
		return nil
	}
	var err error
	switch format {
	case media.WAV:
		return nil
	case media.MP3:
		err = w.writeMP3(ctx, path, tags, cover)
	case media.FLAC:
		err = w.writeFLAC(path, tags, cover)
	case media.OGG:
		err = w.writeOGG(ctx, path, tags, cover)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return faults.Wrap(faults.ErrTagWrite, "tags", string(format), path, err)
	}
	return nil
}

// WriteTags applies tags to path.
func (w *Writer) WriteTags(ctx context.Context, path string, tags metadata.Tags, format media.Format) error {
	return w.Write(ctx, path, format, tags, nil)
}

// WriteCover embeds the image at coverPath as front-cover artwork.
func (w *Writer) WriteCover(ctx context.Context, path, coverPath string, format media.Format) error {
	if !format.Taggable() {
		return nil
	}
	cover, err := LoadCover(coverPath)
	if err != nil {
		return err
	}
	return w.Write(ctx, path, format, nil, cover)
}
