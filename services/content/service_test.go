package content_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cinehub/internal/database"
	"cinehub/models"
	"cinehub/services/content"
)

func newTestService(t *testing.T) *content.Service {
	t.Helper()

	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return content.NewService(db.Conn())
}

func movieInput(title string) models.ContentUpsert {
	return models.ContentUpsert{
		Title:       title,
		Description: "A test movie",
		Genres:      []string{"Drama"},
		Year:        2020,
		Duration:    120,
		Type:        models.ContentTypeMovie,
	}
}

func seriesInput(title string) models.ContentUpsert {
	input := movieInput(title)
	input.Type = models.ContentTypeSeries
	return input
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc := newTestService(t)

	item, err := svc.Create(models.ContentUpsert{
		Title:       "Bare Minimum",
		Description: "Just the required fields",
		Genres:      []string{"Drama"},
		Year:        2021,
		Duration:    95,
	})
	require.NoError(t, err)

	require.NotEmpty(t, item.ID)
	require.Equal(t, models.ContentTypeMovie, item.Type)
	require.Equal(t, "TV-14", item.Rating)
	require.Equal(t, 3, item.StarRating)
	require.Equal(t, 1, item.Popularity)
	require.True(t, item.IsActive)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		name    string
		mutate  func(*models.ContentUpsert)
		wantErr error
	}{
		{"missing title", func(c *models.ContentUpsert) { c.Title = " " }, content.ErrTitleRequired},
		{"missing description", func(c *models.ContentUpsert) { c.Description = "" }, content.ErrDescriptionNeeded},
		{"missing genres", func(c *models.ContentUpsert) { c.Genres = nil }, content.ErrGenreRequired},
		{"year too old", func(c *models.ContentUpsert) { c.Year = 1800 }, content.ErrInvalidYear},
		{"zero duration", func(c *models.ContentUpsert) { c.Duration = 0 }, content.ErrInvalidDuration},
		{"bad rating", func(c *models.ContentUpsert) { c.Rating = "AAA" }, content.ErrInvalidRating},
		{"bad type", func(c *models.ContentUpsert) { c.Type = "short" }, content.ErrInvalidType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := movieInput("Broken")
			tc.mutate(&input)
			_, err := svc.Create(input)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestEpisodesRequireExistingSeries(t *testing.T) {
	svc := newTestService(t)

	episode := movieInput("Pilot")
	episode.Type = models.ContentTypeEpisode

	_, err := svc.Create(episode)
	require.ErrorIs(t, err, content.ErrSeriesRequired)

	episode.SeriesID = "ghost"
	_, err = svc.Create(episode)
	require.ErrorIs(t, err, content.ErrSeriesNotFound)

	movie, err := svc.Create(movieInput("Not A Series"))
	require.NoError(t, err)
	episode.SeriesID = movie.ID
	_, err = svc.Create(episode)
	require.ErrorIs(t, err, content.ErrNotASeries)

	series, err := svc.Create(seriesInput("Real Show"))
	require.NoError(t, err)
	episode.SeriesID = series.ID
	created, err := svc.Create(episode)
	require.NoError(t, err)
	require.Equal(t, series.ID, created.SeriesID)
	require.Equal(t, 1, created.EpisodeNumber)
}

func TestEpisodesOrderedByNumber(t *testing.T) {
	svc := newTestService(t)

	series, err := svc.Create(seriesInput("Show"))
	require.NoError(t, err)

	for _, number := range []int{3, 1, 2} {
		episode := movieInput("Episode")
		episode.Type = models.ContentTypeEpisode
		episode.SeriesID = series.ID
		episode.EpisodeNumber = number
		_, err := svc.Create(episode)
		require.NoError(t, err)
	}

	episodes, err := svc.Episodes(series.ID)
	require.NoError(t, err)
	require.Len(t, episodes, 3)
	for i, episode := range episodes {
		require.Equal(t, i+1, episode.EpisodeNumber)
	}
}

func TestSoftDeleteHidesFromFindButNotFindByID(t *testing.T) {
	svc := newTestService(t)

	item, err := svc.Create(movieInput("Disappearing"))
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(item.ID))

	page, err := svc.Find(content.Filter{})
	require.NoError(t, err)
	require.Empty(t, page.Items)

	found, err := svc.FindByID(item.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.False(t, found.IsActive)

	require.ErrorIs(t, svc.SoftDelete("missing"), content.ErrContentNotFound)
}

func TestFindFiltersAndPaginates(t *testing.T) {
	svc := newTestService(t)

	drama := movieInput("Heavy Rain")
	drama.Genres = []string{"Drama"}
	_, err := svc.Create(drama)
	require.NoError(t, err)

	comedy := movieInput("Light Laughs")
	comedy.Genres = []string{"Comedy"}
	comedy.Year = 2022
	_, err = svc.Create(comedy)
	require.NoError(t, err)

	show := seriesInput("Rainy Days")
	show.Genres = []string{"Drama"}
	_, err = svc.Create(show)
	require.NoError(t, err)

	page, err := svc.Find(content.Filter{Genres: []string{"Drama"}})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)

	page, err = svc.Find(content.Filter{Type: models.ContentTypeMovie})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)

	page, err = svc.Find(content.Filter{Search: "rain"})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)

	page, err = svc.Find(content.Filter{Year: 2022})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)

	page, err = svc.Find(content.Filter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, 3, page.Total)
	require.Equal(t, 2, page.TotalPages)

	page, err = svc.Find(content.Filter{Limit: 2, Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
}

func TestShelves(t *testing.T) {
	svc := newTestService(t)

	popular := movieInput("Blockbuster")
	popular.Popularity = 5
	_, err := svc.Create(popular)
	require.NoError(t, err)

	niche := movieInput("Arthouse")
	niche.Popularity = 1
	_, err = svc.Create(niche)
	require.NoError(t, err)

	_, err = svc.Create(seriesInput("Show"))
	require.NoError(t, err)

	top, err := svc.MostPopular(10)
	require.NoError(t, err)
	require.NotEmpty(t, top)
	require.Equal(t, "Blockbuster", top[0].Title)

	movies, err := svc.NewestMovies(10)
	require.NoError(t, err)
	require.Len(t, movies, 2)

	series, err := svc.NewestSeries(10)
	require.NoError(t, err)
	require.Len(t, series, 1)
	require.Equal(t, "Show", series[0].Title)
}

func TestSimilarSharesGenreAndExcludesSelf(t *testing.T) {
	svc := newTestService(t)

	source := movieInput("Original")
	source.Genres = []string{"Sci-Fi"}
	created, err := svc.Create(source)
	require.NoError(t, err)

	match := movieInput("Lookalike")
	match.Genres = []string{"Sci-Fi", "Action"}
	_, err = svc.Create(match)
	require.NoError(t, err)

	other := movieInput("Unrelated")
	other.Genres = []string{"Romance"}
	_, err = svc.Create(other)
	require.NoError(t, err)

	similar, err := svc.Similar(created.ID, 10)
	require.NoError(t, err)
	require.Len(t, similar, 1)
	require.Equal(t, "Lookalike", similar[0].Title)

	_, err = svc.Similar("missing", 10)
	require.ErrorIs(t, err, content.ErrContentNotFound)
}

func TestUpdateReplacesFields(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(movieInput("Before"))
	require.NoError(t, err)

	input := movieInput("After")
	input.Genres = []string{"Thriller"}
	updated, err := svc.Update(created.ID, input)
	require.NoError(t, err)
	require.Equal(t, "After", updated.Title)
	require.Equal(t, []string{"Thriller"}, updated.Genres)
	require.Equal(t, created.ID, updated.ID)

	reloaded, err := svc.FindByID(created.ID)
	require.NoError(t, err)
	require.Equal(t, "After", reloaded.Title)

	_, err = svc.Update("missing", movieInput("Ghost"))
	require.ErrorIs(t, err, content.ErrContentNotFound)
}
