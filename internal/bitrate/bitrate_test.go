package bitrate

import (
	"testing"

	"albumus/internal/config"
	"albumus/internal/media"
)

func TestOGGQualityMapping(t *testing.T) {
	tests := []struct {
		name   string
		source int64
		known  bool
		want   int64
	}{
		{"mid range", 192000, true, 8},
		{"above max clamps", 320000, true, 10},
		{"below base clamps to min", 32000, true, 0},
		{"exactly base", 64000, true, 0},
		{"one step", 80000, true, 1},
		{"just under step floors", 79999, true, 0},
		{"unknown uses fallback", 0, false, 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := OGG(tc.source, tc.known, 0, 10, 64000, 16000, 10)
			if got.Mode != ModeQScale || got.Value != tc.want {
				t.Fatalf("OGG(%d) = %+v, want qscale %d", tc.source, got, tc.want)
			}
		})
	}
}

func TestOGGFloorsNegativeDifference(t *testing.T) {
	got := OGG(50000, true, -5, 10, 64000, 16000, 10)
	if got.Value != -1 {
		t.Fatalf("expected floor(-14000/16000) = -1, got %d", got.Value)
	}
}

func TestOGGNonPositiveStepFallsBack(t *testing.T) {
	got := OGG(192000, true, 0, 10, 64000, 0, 7)
	if got.Value != 7 {
		t.Fatalf("expected fallback 7, got %+v", got)
	}
}

func TestMP3(t *testing.T) {
	if got := MP3(320000, true, 2); got.Mode != ModeMatch || got.Value != 320 {
		t.Fatalf("MP3 known = %+v", got)
	}
	if got := MP3(4000, true, 2); got.Value != minMP3Kbps {
		t.Fatalf("MP3 tiny bitrate = %+v", got)
	}
	if got := MP3(0, false, 2); got.Mode != ModeQScale || got.Value != 2 {
		t.Fatalf("MP3 unknown = %+v", got)
	}
}

func TestDecide(t *testing.T) {
	strategy := config.BitrateStrategy{
		MP3: config.MP3Strategy{FallbackQScale: 4},
		OGG: config.OGGStrategy{MinQuality: 0, MaxQuality: 10, BaseBitrate: 64000, Step: 16000, FallbackQScale: 9},
	}
	unknown := Probe{}
	tests := []struct {
		format media.Format
		want   Decision
	}{
		{media.MP3, Decision{Format: media.MP3, Mode: ModeQScale, Value: 4}},
		{media.OGG, Decision{Format: media.OGG, Mode: ModeQScale, Value: 9}},
		{media.FLAC, Decision{Format: media.FLAC, Mode: ModeCompression, Value: 8}},
		{media.WAV, Decision{Format: media.WAV, Mode: ModeNone}},
	}
	for _, tc := range tests {
		got, err := Decide(tc.format, unknown, strategy)
		if err != nil {
			t.Fatalf("Decide(%s): %v", tc.format, err)
		}
		if got != tc.want {
			t.Fatalf("Decide(%s) = %+v, want %+v", tc.format, got, tc.want)
		}
	}
	if _, err := Decide(media.Format("aac"), unknown, strategy); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
