package tags

import (
	"context"

	"github.com/bogem/id3v2"

	"albumus/internal/metadata"
)

func (w *Writer) writeMP3(ctx context.Context, path string, tags metadata.Tags, cover *Cover) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()
	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	for _, key := range tags.Keys() {
		field, ok := w.table[key]
		if !ok {
			w.logger.DebugContext(ctx, "no id3 frame for tag, dropping", "tag", key)
			continue
		}
		value := tags[key]
		if field.ID3 == "COMM" {
			tag.DeleteFrames("COMM")
			tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding: id3v2.EncodingUTF8,
				Language: "eng",
				Text:     value,
			})
			continue
		}
		tag.AddTextFrame(field.ID3, id3v2.EncodingUTF8, value)
	}

	if cover != nil {
		tag.DeleteFrames(tag.CommonID("Attached picture"))
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    cover.MIME,
			PictureType: id3v2.PTFrontCover,
			Description: coverDescription,
			Picture:     cover.Data,
		})
	}
	return tag.Save()
}
