package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNormalize tests release tag stripping and folding.
func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{"dotted release", "Movie.Title.2023.1080p.BluRay", "movie title"},
		{"parenthetical year", "Movie Title (2023)", "movie title"},
		{"game repack", "Elden Ring (v1.10 + DLC) [DODI Repack]", "elden ring"},
		{"edition and add-ons", "Elden Ring: Shadow of the Erdtree Deluxe Edition (v1.12.3 + DLC, MULTi14) [FitGirl Repack]", "elden ring shadow of the erdtree"},
		{"accents folded", "Pokémon Détective Pikachu 2019 720p WEBRip x264-YIFY", "pokemon detective pikachu"},
		{"bracketed group", "Oppenheimer.2023.1080p.WEBRip.x264.AAC5.1-[YTS.MX]", "oppenheimer"},
		{"codec with dot", "Dune Part Two 2024 1080p HDTV H.264-EVO", "dune part two"},
		{"unknown tokens kept", "Some Obscure Title Zyx", "some obscure title zyx"},
		{"whitespace collapsed", "  Spaced   Out\tTitle  ", "spaced out title"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.title))
		})
	}
}

// TestNormalizeOnlyTags tests that a title made of release tags still has a key.
func TestNormalizeOnlyTags(t *testing.T) {
	assert.Equal(t, "1080p bluray", Normalize("1080p.BluRay"))
	assert.Equal(t, Normalize("1080p.BluRay"), Normalize("1080p BluRay"))
}

// TestNormalizeIsPure tests that normalization is deterministic.
func TestNormalizeIsPure(t *testing.T) {
	title := "The.Matrix.1999.REMASTERED.2160p.UHD.BluRay.x265-RARBG"
	first := Normalize(title)
	for range 5 {
		assert.Equal(t, first, Normalize(title))
	}
	assert.Equal(t, "the matrix", first)
}

// TestDisplayTitle tests light cleaning that keeps case.
func TestDisplayTitle(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{"dotted release", "Movie.Title.2023.1080p.BluRay", "Movie Title"},
		{"keeps colon", "Elden Ring: Shadow of the Erdtree Deluxe Edition (v1.12.3 + DLC, MULTi14) [FitGirl Repack]", "Elden Ring: Shadow of the Erdtree"},
		{"keeps accents", "Pokémon Détective Pikachu 2019 720p WEBRip x264-YIFY", "Pokémon Détective Pikachu"},
		{"plain title unchanged", "Dune Part Two", "Dune Part Two"},
		{"only tags falls back", "1080p", "1080p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DisplayTitle(tt.title))
		})
	}
}
