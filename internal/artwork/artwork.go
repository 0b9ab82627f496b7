// Package artwork derives the resized album art variants of an album from its
// cover image.
package artwork

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/draw"

	"albumus/internal/config"
	"albumus/internal/logging"
)

// Output encodings.
const (
	FormatJPEG = "JPEG"
	FormatPNG  = "PNG"
)

// Generator writes one image per configured size.
type Generator struct {
	format  string
	quality int
	logger  *slog.Logger
}

// NewGenerator builds a generator from the output settings.
func NewGenerator(output config.Output, logger *slog.Logger) *Generator {
	format := strings.ToUpper(strings.TrimSpace(output.ImageOutputFormat))
	if format != FormatPNG {
		format = FormatJPEG
	}
	quality := output.ImageQuality
	if quality < 1 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	return &Generator{
		format:  format,
		quality: quality,
		logger:  logging.NewComponentLogger(logger, "artwork"),
	}
}

// Generate decodes sourcePath and writes <name>.jpg (or .png) into outputDir
// for every size that fits inside the source. Sizes are processed in name
// order; a failing size is logged and skipped. The error is non-nil only
// when the source cannot be decoded.
func (g *Generator) Generate(ctx context.Context, sourcePath, outputDir string, sizes map[string]config.Size) ([]string, error) {
	src, err := decode(sourcePath)
	if err != nil {
		return nil, err
	}
	bounds := src.Bounds()
	logger := logging.WithContext(ctx, g.logger)

	names := make([]string, 0, len(sizes))
	for name := range sizes {
		names = append(names, name)
	}
	sort.Strings(names)

	var written []string
	for _, name := range names {
		size := sizes[name]
		if size.Width > bounds.Dx() || size.Height > bounds.Dy() {
			logger.Debug("art size exceeds source, skipping",
				logging.String("size", name),
				logging.Int("width", size.Width),
				logging.Int("height", size.Height),
				logging.Int("source_width", bounds.Dx()),
				logging.Int("source_height", bounds.Dy()),
			)
			continue
		}
		path := filepath.Join(outputDir, name+g.extension())
		if err := g.write(path, resize(src, size)); err != nil {
			logger.Warn("album art size failed", logging.String("size", name), logging.String(logging.FieldPath, path), logging.Error(err))
			continue
		}
		logger.Info("created album art", logging.String("size", name), logging.String(logging.FieldPath, path))
		written = append(written, path)
	}
	return written, nil
}

func (g *Generator) extension() string {
	if g.format == FormatPNG {
		return ".png"
	}
	return ".jpg"
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cover: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode cover %s: %w", path, err)
	}
	return img, nil
}

// resize scales src to exactly size on an opaque white canvas, dropping any
// alpha or palette.
func resize(src image.Image, size config.Size) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

func (g *Generator) write(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if g.format == FormatPNG {
		err = png.Encode(f, img)
	} else {
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: g.quality})
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
	}
	return err
}
