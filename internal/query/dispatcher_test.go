package query

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"imdb-catalog/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func setupDispatcher(t *testing.T) (*Dispatcher, *fakeCatalog, *fakeOpener, *test.Hook) {
	t.Helper()

	catalog := newFakeCatalog()

	matrix := &models.Movie{TitleRecord: models.TitleRecord{
		ImdbID: "tt0133093", TitleType: models.TitleTypeMovie,
		PrimaryTitle: "The Matrix", OriginalTitle: "The Matrix", StartYear: intPtr(1999),
	}}
	breakingBad := &models.Series{TitleRecord: models.TitleRecord{
		ImdbID: "tt0903747", TitleType: models.TitleTypeSeries, PrimaryTitle: "Breaking Bad",
	}}
	pilot := &models.Episode{
		TitleRecord: models.TitleRecord{ImdbID: "tt0959621", TitleType: models.TitleTypeEpisode, PrimaryTitle: "Pilot"},
		Info:        &models.EpisodeInfo{EpisodeID: "tt0959621", SeriesID: "tt0903747", SeasonNumber: 1, EpisodeNumber: 1},
	}
	catsInTheBag := &models.Episode{
		TitleRecord: models.TitleRecord{ImdbID: "tt1054724", TitleType: models.TitleTypeEpisode, PrimaryTitle: "Cat's in the Bag..."},
		Info:        &models.EpisodeInfo{EpisodeID: "tt1054724", SeriesID: "tt0903747", SeasonNumber: 1, EpisodeNumber: 2},
	}
	orphan := &models.Episode{
		TitleRecord: models.TitleRecord{ImdbID: "tt9999999", TitleType: models.TitleTypeEpisode, PrimaryTitle: "Lost"},
	}

	for _, title := range []models.Title{matrix, breakingBad, pilot, catsInTheBag, orphan} {
		catalog.titles[title.Record().ImdbID] = title
	}
	catalog.ratings["tt0133093"] = &models.Rating{ImdbID: "tt0133093", AverageRating: 8.7, NumVotes: 2100000}
	catalog.seasons["tt0903747"] = 5
	catalog.episodes["tt0903747"] = []*models.Episode{pilot, catsInTheBag}
	catalog.names["nm0000206"] = &models.Name{ImdbID: "nm0000206", PrimaryName: "Keanu Reeves", BirthYear: intPtr(1964)}
	catalog.names["nm0000001"] = &models.Name{ImdbID: "nm0000001", PrimaryName: "Fred Astaire"}
	catalog.knownFor["nm0000206"] = []models.Title{matrix, nil}

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	opener := &fakeOpener{catalog: catalog}
	return NewDispatcher(opener, logger, 100), catalog, opener, hook
}

func run(d *Dispatcher, query string, variables map[string]any) *Response {
	return d.Execute(context.Background(), &Request{Query: query, Variables: variables})
}

func render(t *testing.T, resp *Response) string {
	t.Helper()
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(out)
}

func requireCodes(t *testing.T, resp *Response, code string) {
	t.Helper()
	require.NotEmpty(t, resp.Errors)
	for _, fe := range resp.Errors {
		assert.Equal(t, code, fe.Extensions.Code, fe.Message)
	}
}

func TestExecuteKeepsSelectionOrder(t *testing.T) {
	d, _, opener, _ := setupDispatcher(t)

	resp := run(d, `{
		m: movie(imdbID: "tt0133093") { primaryTitle imdbID year: startYear }
		rating(imdbID: "tt0133093") { numVotes averageRating }
	}`, nil)

	assert.Equal(t,
		`{"data":{"m":{"primaryTitle":"The Matrix","imdbID":"tt0133093","year":1999},"rating":{"numVotes":2100000,"averageRating":8.7}}}`,
		render(t, resp))
	assert.Equal(t, 1, opener.opened, "root fields share one session")
}

func TestExecuteIsRepeatable(t *testing.T) {
	d, _, _, _ := setupDispatcher(t)
	doc := `{ series(imdbID: "tt0903747") { totalSeasons episodes { imdbID episodeNumber } } }`

	first := render(t, run(d, doc, nil))
	second := render(t, run(d, doc, nil))
	assert.Equal(t, first, second)
	assert.Contains(t, first, `"totalSeasons":5`)
}

func TestExecuteStorageFailureIsLocalToField(t *testing.T) {
	d, catalog, _, hook := setupDispatcher(t)
	catalog.failing["ResolveMovie"] = true

	resp := run(d, `{
		movie(imdbID: "bad") { imdbID }
		name(imdbID: "nm0000206") { primaryName }
	}`, nil)

	assert.JSONEq(t, `{"movie":null,"name":{"primaryName":"Keanu Reeves"}}`, string(resp.Data))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, internalMessage, resp.Errors[0].Message)
	assert.Equal(t, []any{"movie"}, resp.Errors[0].Path)
	assert.Equal(t, CodeInternalError, resp.Errors[0].Extensions.Code)
	assert.NotContains(t, render(t, resp), "statement timeout")

	var logged bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel && entry.Data["code"] == CodeInternalError {
			logged = true
			assert.ErrorIs(t, entry.Data[logrus.ErrorKey].(error), errStorage)
		}
	}
	assert.True(t, logged, "internal failures are logged")
}

func TestExecuteNestedFailureKeepsSiblings(t *testing.T) {
	d, catalog, _, _ := setupDispatcher(t)
	catalog.failing["ResolveRating"] = true

	resp := run(d, `{ title(imdbID: "tt0133093") { primaryTitle averageRating } }`, nil)

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, []any{"title", "averageRating"}, resp.Errors[0].Path)
	assert.JSONEq(t, `{"title":{"primaryTitle":"The Matrix","averageRating":null}}`, string(resp.Data))
}

func TestExecuteSessionFailureFailsEveryRoot(t *testing.T) {
	d, _, opener, _ := setupDispatcher(t)
	opener.err = errors.New("failed to acquire connection")

	resp := run(d, `{
		movie(imdbID: "tt0133093") { imdbID }
		name(imdbID: "nm0000206") { primaryName }
	}`, nil)

	assert.Equal(t, `{"movie":null,"name":null}`, string(resp.Data))
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, []any{"movie"}, resp.Errors[0].Path)
	assert.Equal(t, []any{"name"}, resp.Errors[1].Path)
	requireCodes(t, resp, CodeInternalError)
}

func TestExecuteMissingRequiredArgument(t *testing.T) {
	d, catalog, opener, _ := setupDispatcher(t)

	resp := run(d, `{
		movie { imdbID }
		titleSearch(result: 3) { imdbID }
	}`, nil)

	requireCodes(t, resp, CodeValidationFailed)
	assert.Equal(t, `{"movie":null,"titleSearch":null}`, string(resp.Data))
	assert.Equal(t, []any{"movie"}, resp.Errors[0].Path)
	assert.Contains(t, resp.Errors[0].Message, "imdbID")
	assert.Equal(t, []any{"titleSearch"}, resp.Errors[len(resp.Errors)-1].Path)
	assert.Empty(t, catalog.calls)
	assert.Zero(t, opener.opened)

	resp = run(d, `{ movie(imdbID: null) { imdbID } }`, nil)
	requireCodes(t, resp, CodeValidationFailed)
	assert.Zero(t, opener.opened)
}

func TestExecuteValidationFailureKeepsSiblings(t *testing.T) {
	d, _, opener, _ := setupDispatcher(t)

	resp := run(d, `{
		movie { imdbID }
		name(imdbID: "nm0000206") { primaryName }
	}`, nil)

	assert.Equal(t, `{"movie":null,"name":{"primaryName":"Keanu Reeves"}}`, string(resp.Data))
	requireCodes(t, resp, CodeValidationFailed)
	for _, fe := range resp.Errors {
		assert.Equal(t, []any{"movie"}, fe.Path)
	}
	assert.Equal(t, 1, opener.opened)
}

func TestExecuteSplitKeepsFragmentsAndVariables(t *testing.T) {
	d, _, _, _ := setupDispatcher(t)

	resp := run(d, `query Lookup($id: String!) {
		movie { imdbID }
		...Person
	}
	fragment Person on Query {
		name(imdbID: $id) { primaryName }
	}`, map[string]any{"id": "nm0000206"})

	assert.Equal(t, `{"movie":null,"name":{"primaryName":"Keanu Reeves"}}`, string(resp.Data))
	requireCodes(t, resp, CodeValidationFailed)
}

func TestExecuteRejectsUnknownSelections(t *testing.T) {
	d, _, opener, _ := setupDispatcher(t)

	cases := map[string]struct{ key, doc string }{
		"unknown root":        {"album", `{ album(imdbID: "x") { imdbID } }`},
		"unknown argument":    {"movie", `{ movie(imdbID: "x", year: 1999) { imdbID } }`},
		"field on interface":  {"title", `{ title(imdbID: "x") { totalSeasons } }`},
		"missing sub-fields":  {"movie", `{ movie(imdbID: "x") }`},
		"scalar sub-fields":   {"movie", `{ movie(imdbID: "x") { imdbID { x } } }`},
		"impossible fragment": {"title", `{ title(imdbID: "x") { ... on Name { primaryName } } }`},
		"concrete mismatch":   {"movie", `{ movie(imdbID: "x") { ... on Series { totalSeasons } } }`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp := run(d, tc.doc, nil)
			requireCodes(t, resp, CodeValidationFailed)
			assert.JSONEq(t, `{"`+tc.key+`":null}`, string(resp.Data))
		})
	}
	assert.Zero(t, opener.opened)

	resp := run(d, "   ", nil)
	requireCodes(t, resp, CodeValidationFailed)
	assert.Nil(t, resp.Data)

	resp = run(d, `{ movie(imdbID: "x") { imdbID `, nil)
	requireCodes(t, resp, CodeValidationFailed)
}

func TestEpisodesSeasonArgument(t *testing.T) {
	d, catalog, _, _ := setupDispatcher(t)

	query := func(season string) string {
		return `{
			series(imdbID: "tt0903747") {
				primaryTitle
				episodes` + season + ` { imdbID seasonNumber }
			}
			name(imdbID: "nm0000206") { primaryName }
		}`
	}

	for _, bad := range []string{`(season: ["one"])`, `(season: [1.5])`, `(season: [null])`, `(season: [1, null, 3])`} {
		catalog.calls = nil
		resp := run(d, query(bad), nil)
		requireCodes(t, resp, CodeValidationFailed)
		assert.Equal(t, []any{"series"}, resp.Errors[0].Path, bad)
		assert.JSONEq(t, `{"series":null,"name":{"primaryName":"Keanu Reeves"}}`, string(resp.Data), bad)
		assert.NotContains(t, catalog.calls, "EpisodesOf", bad)
	}

	catalog.calls = nil
	resp := run(d, `query($s: [Int!]) {
		series(imdbID: "tt0903747") { episodes(season: $s) { imdbID } }
	}`, map[string]any{"s": []any{nil}})
	requireCodes(t, resp, CodeValidationFailed)
	assert.NotContains(t, catalog.calls, "EpisodesOf")

	resp = run(d, query(`(season: [1, 2])`), nil)
	assert.Empty(t, resp.Errors)
	assert.Equal(t, []int{1, 2}, catalog.seasonFilter)

	resp = run(d, query(`(season: 2)`), nil)
	assert.Empty(t, resp.Errors)
	assert.Equal(t, []int{2}, catalog.seasonFilter)

	resp = run(d, query(`(season: [])`), nil)
	assert.Empty(t, resp.Errors)
	assert.Nil(t, catalog.seasonFilter)

	resp = run(d, query(``), nil)
	assert.Empty(t, resp.Errors)
	assert.Nil(t, catalog.seasonFilter)
	assert.Contains(t, string(resp.Data),
		`"episodes":[{"imdbID":"tt0959621","seasonNumber":1},{"imdbID":"tt1054724","seasonNumber":1}]`)
}

func TestSearchArgumentDefaults(t *testing.T) {
	d, catalog, _, _ := setupDispatcher(t)

	resp := run(d, `{ titleSearch(title: "matrix") { imdbID } }`, nil)
	assert.Empty(t, resp.Errors)
	assert.Equal(t, 5, catalog.searchLimit)
	assert.Nil(t, catalog.searchTypes)
	assert.Equal(t, "matrix", catalog.searchText)

	resp = run(d, `{ titleSearch(title: "matrix", result: null) { imdbID } }`, nil)
	assert.Empty(t, resp.Errors)
	assert.Equal(t, 5, catalog.searchLimit)

	resp = run(d, `{ nameSearch(name: "keanu") { imdbID } }`, nil)
	assert.Empty(t, resp.Errors)
	assert.Equal(t, 10, catalog.searchLimit)

	resp = run(d, `{ titleSearch(title: "matrix", types: [movie, series], result: 20) { imdbID } }`, nil)
	assert.Empty(t, resp.Errors)
	assert.Equal(t, 20, catalog.searchLimit)
	assert.Equal(t, []models.TitleType{models.TitleTypeMovie, models.TitleTypeSeries}, catalog.searchTypes)

	resp = run(d, `query($n: Int) { nameSearch(name: "keanu", result: $n) { imdbID } }`, map[string]any{"n": float64(7)})
	assert.Empty(t, resp.Errors)
	assert.Equal(t, 7, catalog.searchLimit)
}

func TestSearchResultIsCappedAtMaxResults(t *testing.T) {
	d, catalog, _, _ := setupDispatcher(t)

	resp := run(d, `{ titleSearch(title: "matrix", result: 500) { imdbID } }`, nil)
	assert.Empty(t, resp.Errors)
	assert.Equal(t, 100, catalog.searchLimit)

	resp = run(d, `{ nameSearch(name: "keanu", result: 101) { imdbID } }`, nil)
	assert.Empty(t, resp.Errors)
	assert.Equal(t, 100, catalog.searchLimit)
}

func TestSearchArgumentValidation(t *testing.T) {
	d, _, _, _ := setupDispatcher(t)

	for _, args := range []string{
		`title: "matrix", result: 0`,
		`title: "matrix", result: -3`,
		`title: "matrix", result: "five"`,
		`title: "matrix", types: [videoGame]`,
		`title: "matrix", types: [MOVIE]`,
		`title: 42`,
		`title: "   "`,
		`title: "nul\u0000byte"`,
	} {
		resp := run(d, `{ titleSearch(`+args+`) { imdbID } }`, nil)
		requireCodes(t, resp, CodeValidationFailed)
		assert.Equal(t, []any{"titleSearch"}, resp.Errors[0].Path, args)
		assert.JSONEq(t, `{"titleSearch":null}`, string(resp.Data), args)
	}
}

func TestPolymorphicTypeConditions(t *testing.T) {
	d, catalog, _, _ := setupDispatcher(t)
	catalog.searchHits = []models.Title{
		catalog.titles["tt0133093"],
		catalog.titles["tt0903747"],
		catalog.titles["tt0959621"],
		catalog.titles["tt9999999"],
	}

	resp := run(d, `{
		titleSearch(title: "breaking") {
			__typename
			imdbID
			... on Series { totalSeasons }
			... on Episode { seasonNumber series { primaryTitle } }
		}
	}`, nil)

	assert.Equal(t, `{"data":{"titleSearch":[`+
		`{"__typename":"Movie","imdbID":"tt0133093"},`+
		`{"__typename":"Series","imdbID":"tt0903747","totalSeasons":5},`+
		`{"__typename":"Episode","imdbID":"tt0959621","seasonNumber":1,"series":{"primaryTitle":"Breaking Bad"}},`+
		`{"__typename":"Episode","imdbID":"tt9999999","seasonNumber":null,"series":null}`+
		`]}}`, render(t, resp))
}

func TestNarrowedLookupOfAnotherVariantIsNull(t *testing.T) {
	d, _, _, _ := setupDispatcher(t)

	resp := run(d, `{
		series(imdbID: "tt0133093") { imdbID }
		movie(imdbID: "missing") { imdbID }
	}`, nil)

	assert.Equal(t, `{"data":{"series":null,"movie":null}}`, render(t, resp))
}

func TestKnownForTitles(t *testing.T) {
	d, _, _, _ := setupDispatcher(t)

	resp := run(d, `{
		keanu: name(imdbID: "nm0000206") { primaryName knownForTitles { imdbID } }
		fred: name(imdbID: "nm0000001") { knownForTitles { imdbID } }
	}`, nil)

	assert.Equal(t,
		`{"data":{"keanu":{"primaryName":"Keanu Reeves","knownForTitles":[{"imdbID":"tt0133093"},null]},"fred":{"knownForTitles":null}}}`,
		render(t, resp))
}

func TestExecuteOperationName(t *testing.T) {
	d, _, _, _ := setupDispatcher(t)
	doc := `query Film { movie(imdbID: "tt0133093") { primaryTitle } }
	query Person { name(imdbID: "nm0000206") { primaryName } }`

	resp := d.Execute(context.Background(), &Request{Query: doc, OperationName: "Person"})
	assert.Empty(t, resp.Errors)
	assert.Equal(t, `{"name":{"primaryName":"Keanu Reeves"}}`, string(resp.Data))

	resp = d.Execute(context.Background(), &Request{Query: doc})
	requireCodes(t, resp, CodeValidationFailed)
}

func TestSchemaDescribesOperations(t *testing.T) {
	sdl := Schema()
	assert.Contains(t, sdl, `titleSearch(title: String!, types: [TitleType!] = [], result: Int = 5): [Title]`)
	assert.Contains(t, sdl, `nameSearch(name: String!, result: Int = 10): [Name]`)
	assert.Contains(t, sdl, `episodes(season: [Int!] = []): [Episode]`)

	d, _, _, _ := setupDispatcher(t)
	resp := run(d, `{
		series: __type(name: "Series") { fields { name } }
		movie: __type(name: "Movie") { fields { name } }
	}`, nil)
	require.Empty(t, resp.Errors)

	var data struct {
		Series struct{ Fields []struct{ Name string } }
		Movie  struct{ Fields []struct{ Name string } }
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	names := func(fields []struct{ Name string }) []string {
		var out []string
		for _, f := range fields {
			out = append(out, f.Name)
		}
		return out
	}
	assert.Contains(t, names(data.Series.Fields), "totalSeasons")
	assert.Contains(t, names(data.Movie.Fields), "averageRating")
	assert.NotContains(t, names(data.Movie.Fields), "totalSeasons")
}
