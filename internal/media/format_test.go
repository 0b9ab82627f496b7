package media

import "testing"

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"mp3", MP3, false},
		{" FLAC ", FLAC, false},
		{"ogg", OGG, false},
		{"wav", WAV, false},
		{"aac", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTaggable(t *testing.T) {
	if WAV.Taggable() {
		t.Fatal("wav outputs are never tagged")
	}
	for _, f := range []Format{MP3, FLAC, OGG} {
		if !f.Taggable() {
			t.Fatalf("%s should be taggable", f)
		}
	}
}

func TestIsSourceExtension(t *testing.T) {
	for _, ext := range []string{".wav", ".FLAC", ".mp3", ".ogg"} {
		if !IsSourceExtension(ext) {
			t.Fatalf("expected %s to be a track extension", ext)
		}
	}
	for _, ext := range []string{".png", ".json", ""} {
		if IsSourceExtension(ext) {
			t.Fatalf("did not expect %q to be a track extension", ext)
		}
	}
}
