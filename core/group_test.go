package core

import (
	"errors"
	"testing"

	"github.com/huangsam/peerrank/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movie(title string, seeders, leechers int) schema.RawRecord {
	return schema.RawRecord{Title: title, Seeders: seeders, Leechers: leechers, Category: schema.MoviesCategory}
}

func TestGroupMergesReleaseVariants(t *testing.T) {
	result := Group([]schema.RawRecord{
		movie("Movie.Title.2023.1080p.BluRay", 100, 20),
		movie("Movie Title (2023)", 40, 10),
	}, schema.MoviesCategory)

	require.Len(t, result.Groups, 1)
	g := result.Groups[0]
	assert.Equal(t, "Movie.Title.2023.1080p.BluRay", g.MainTitle)
	assert.Equal(t, 140, g.TotalSeeders)
	assert.Equal(t, 30, g.TotalLeechers)
	assert.Equal(t, 170, g.TotalPeers)
	assert.Equal(t, []string{"Movie.Title.2023.1080p.BluRay", "Movie Title (2023)"}, g.MemberTitles)
	assert.Empty(t, result.Rejected)
}

func TestGroupDisplayTitles(t *testing.T) {
	result := Group([]schema.RawRecord{
		movie("Movie.Title.2023.1080p.BluRay", 100, 20),
	}, schema.MoviesCategory, WithDisplayTitles())

	require.Len(t, result.Groups, 1)
	assert.Equal(t, "Movie Title", result.Groups[0].MainTitle)
}

func TestGroupEmptyInput(t *testing.T) {
	result := Group(nil, schema.MoviesCategory)
	assert.NotNil(t, result.Groups)
	assert.Empty(t, result.Groups)
	assert.Empty(t, result.Rejected)
}

func TestGroupRejectsMalformedRecords(t *testing.T) {
	records := []schema.RawRecord{
		movie("Good Movie", 10, 1),
		movie("   ", 5, 5),
		movie("Negative Movie", -1, 3),
		{Title: "Some Game", Seeders: 3, Leechers: 1, Category: schema.GamesCategory},
	}
	result := Group(records, schema.MoviesCategory)

	require.Len(t, result.Groups, 1)
	assert.Equal(t, "Good Movie", result.Groups[0].MainTitle)
	require.Len(t, result.Rejected, 3)
	for i, rejected := range result.Rejected {
		assert.Equal(t, i+1, rejected.Index)
		assert.True(t, errors.Is(rejected.Reason, schema.ErrMalformedRecord))
	}
	assert.Equal(t, []schema.RawRecord{records[0]}, AcceptedRecords(records, result.Rejected))
}

func TestGroupOrdering(t *testing.T) {
	result := Group([]schema.RawRecord{
		movie("Alpha Centauri", 10, 0),
		movie("Zebra Crossing", 50, 0),
		movie("Quiet Harbor", 10, 0),
	}, schema.MoviesCategory)

	titles := make([]string, 0, len(result.Groups))
	for _, g := range result.Groups {
		titles = append(titles, g.MainTitle)
	}
	// Equal peers keep seed order
	assert.Equal(t, []string{"Zebra Crossing", "Alpha Centauri", "Quiet Harbor"}, titles)
}

func TestGroupFirstFitSeedComparison(t *testing.T) {
	// "dxyzq" is close to the member "abcdxyz" but far from the seed "abcd"
	result := Group([]schema.RawRecord{
		movie("abcd", 1, 0),
		movie("abcdxyz", 1, 0),
		movie("dxyzq", 1, 0),
	}, schema.MoviesCategory)

	require.Len(t, result.Groups, 2)
	assert.Equal(t, []string{"abcd", "abcdxyz"}, result.Groups[0].MemberTitles)
	assert.Equal(t, []string{"dxyzq"}, result.Groups[1].MemberTitles)
}

func TestGroupIsPartition(t *testing.T) {
	records := []schema.RawRecord{
		movie("The Long Road 2024 1080p WEB-DL", 30, 4),
		movie("The Long Road (2024) [720p]", 12, 2),
		movie("Another Film 2160p", 80, 9),
		movie("ANOTHER FILM REPACK", 5, 1),
		movie("Completely Different", 1, 1),
		movie("Another.Film.x265", 7, 0),
	}
	result := Group(records, schema.MoviesCategory)

	members := 0
	seeders := 0
	for _, g := range result.Groups {
		assert.Equal(t, g.TotalSeeders+g.TotalLeechers, g.TotalPeers)
		members += len(g.MemberTitles)
		seeders += g.TotalSeeders
	}
	assert.Equal(t, len(records), members)
	assert.Equal(t, 135, seeders)
	assert.Len(t, result.Groups, 3)
}

func TestGroupIdenticalNormalizedTitlesShareGroup(t *testing.T) {
	result := Group([]schema.RawRecord{
		movie("Some Film", 1, 1),
		movie("Unrelated Thing", 9, 9),
		movie("some.film.1080p", 2, 2),
		movie("SOME FILM [REPACK]", 3, 3),
	}, schema.MoviesCategory)

	require.Len(t, result.Groups, 2)
	assert.Equal(t, "Unrelated Thing", result.Groups[0].MainTitle)
	assert.Equal(t, "Some Film", result.Groups[1].MainTitle)
	assert.Equal(t, 12, result.Groups[1].TotalPeers)
}
