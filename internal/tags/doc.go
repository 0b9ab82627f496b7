// Package tags writes resolved track metadata and front-cover artwork into
// encoded outputs.
//
// A declarative Table maps each recognized tag key onto the native field of
// every container: ID3v2 frames for mp3 (github.com/bogem/id3v2) and Vorbis
// comment names for flac (github.com/go-flac) and ogg. Ogg files are rewritten
// through an ffmpeg stream-copy remux because no pure Go Ogg Vorbis comment
// editor is in use; the cover travels as a base64 METADATA_BLOCK_PICTURE
// comment built with flacpicture.
//
// Every call is all-or-nothing: failures wrap faults.ErrTagWrite and the
// output file is left as it was.
package tags
