package tags

import (
	"net/http"
	"os"

	"github.com/go-flac/flacpicture"

	"albumus/internal/faults"
)

const coverDescription = "Cover Art"

// Cover is front-cover artwork embedded as-is.
type Cover struct {
	Data []byte
	MIME string
}

// LoadCover reads an image file and detects its MIME type from content.
func LoadCover(path string) (*Cover, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrTagWrite, "tags", "read cover", path, err)
	}
	return &Cover{Data: data, MIME: http.DetectContentType(data)}, nil
}

// picture builds a FLAC picture block for the cover. Dimensions are filled in
// when the image decodes; other images are embedded with zero dimensions.
func (c *Cover) picture() *flacpicture.MetadataBlockPicture {
	pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, coverDescription, c.Data, c.MIME)
	if err == nil {
		return pic
	}
	return &flacpicture.MetadataBlockPicture{
		PictureType: flacpicture.PictureTypeFrontCover,
		MIME:        c.MIME,
		Description: coverDescription,
		ImageData:   c.Data,
	}
}
