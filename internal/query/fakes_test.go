package query

import (
	"context"
	"errors"

	"imdb-catalog/internal/models"
	"imdb-catalog/internal/services"
)

var errStorage = errors.New("pq: canceling statement due to statement timeout")

type fakeCatalog struct {
	titles     map[string]models.Title
	names      map[string]*models.Name
	ratings    map[string]*models.Rating
	episodes   map[string][]*models.Episode
	knownFor   map[string][]models.Title
	failing    map[string]bool
	seasons    map[string]int
	searchHits []models.Title
	nameHits   []models.Name

	calls        []string
	searchText   string
	searchTypes  []models.TitleType
	searchLimit  int
	seasonFilter []int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		titles:   map[string]models.Title{},
		names:    map[string]*models.Name{},
		ratings:  map[string]*models.Rating{},
		episodes: map[string][]*models.Episode{},
		knownFor: map[string][]models.Title{},
		failing:  map[string]bool{},
		seasons:  map[string]int{},
	}
}

func (f *fakeCatalog) record(op string) error {
	f.calls = append(f.calls, op)
	if f.failing[op] {
		return errStorage
	}
	return nil
}

func (f *fakeCatalog) ResolveTitle(_ context.Context, id string) (models.Title, error) {
	if err := f.record("ResolveTitle"); err != nil {
		return nil, err
	}
	return f.titles[id], nil
}

func (f *fakeCatalog) ResolveMovie(_ context.Context, id string) (*models.Movie, error) {
	if err := f.record("ResolveMovie"); err != nil {
		return nil, err
	}
	m, _ := f.titles[id].(*models.Movie)
	return m, nil
}

func (f *fakeCatalog) ResolveSeries(_ context.Context, id string) (*models.Series, error) {
	if err := f.record("ResolveSeries"); err != nil {
		return nil, err
	}
	s, _ := f.titles[id].(*models.Series)
	return s, nil
}

func (f *fakeCatalog) ResolveEpisode(_ context.Context, id string) (*models.Episode, error) {
	if err := f.record("ResolveEpisode"); err != nil {
		return nil, err
	}
	e, _ := f.titles[id].(*models.Episode)
	return e, nil
}

func (f *fakeCatalog) ResolveName(_ context.Context, id string) (*models.Name, error) {
	if err := f.record("ResolveName"); err != nil {
		return nil, err
	}
	return f.names[id], nil
}

func (f *fakeCatalog) ResolveRating(_ context.Context, id string) (*models.Rating, error) {
	if err := f.record("ResolveRating"); err != nil {
		return nil, err
	}
	return f.ratings[id], nil
}

func (f *fakeCatalog) TotalSeasons(_ context.Context, seriesID string) (int, error) {
	if err := f.record("TotalSeasons"); err != nil {
		return 0, err
	}
	return f.seasons[seriesID], nil
}

func (f *fakeCatalog) EpisodesOf(_ context.Context, seriesID string, seasons []int) ([]*models.Episode, error) {
	if err := f.record("EpisodesOf"); err != nil {
		return nil, err
	}
	f.seasonFilter = seasons
	return f.episodes[seriesID], nil
}

func (f *fakeCatalog) SeriesOf(ctx context.Context, episode *models.Episode) (*models.Series, error) {
	if err := f.record("SeriesOf"); err != nil {
		return nil, err
	}
	if episode.Info == nil {
		return nil, nil
	}
	s, _ := f.titles[episode.Info.SeriesID].(*models.Series)
	return s, nil
}

func (f *fakeCatalog) TitlesKnownFor(_ context.Context, name *models.Name) ([]models.Title, bool, error) {
	if err := f.record("TitlesKnownFor"); err != nil {
		return nil, true, err
	}
	titles, ok := f.knownFor[name.ImdbID]
	return titles, ok, nil
}

func (f *fakeCatalog) SearchTitles(_ context.Context, text string, types []models.TitleType, limit int) ([]models.Title, error) {
	if err := f.record("SearchTitles"); err != nil {
		return nil, err
	}
	if _, err := services.SanitizeSearchText(text); err != nil {
		return nil, err
	}
	f.searchText, f.searchTypes, f.searchLimit = text, types, limit
	return f.searchHits, nil
}

func (f *fakeCatalog) SearchNames(_ context.Context, text string, limit int) ([]models.Name, error) {
	if err := f.record("SearchNames"); err != nil {
		return nil, err
	}
	if _, err := services.SanitizeSearchText(text); err != nil {
		return nil, err
	}
	f.searchText, f.searchLimit = text, limit
	return f.nameHits, nil
}

type fakeOpener struct {
	catalog *fakeCatalog
	err     error
	opened  int
}

func (o *fakeOpener) WithCatalog(_ context.Context, fn func(services.CatalogService) error) error {
	o.opened++
	if o.err != nil {
		return o.err
	}
	return fn(o.catalog)
}
