package services

import (
	"context"
	"sort"

	"imdb-catalog/internal/models"
	"imdb-catalog/internal/repository"
)

// fakeTitleRepository serves titles from memory and applies the same
// episode ordering rule as the SQL implementation.
type fakeTitleRepository struct {
	titles   map[string]models.TitleRecord
	infos    map[string]models.EpisodeInfo
	searched []models.TitleRecord
	params   repository.TitleSearchParams
	err      error
	calls    int
}

func newFakeTitleRepository() *fakeTitleRepository {
	return &fakeTitleRepository{
		titles: map[string]models.TitleRecord{},
		infos:  map[string]models.EpisodeInfo{},
	}
}

func (f *fakeTitleRepository) add(id string, t models.TitleType, primary string) {
	f.titles[id] = models.TitleRecord{ImdbID: id, TitleType: t, PrimaryTitle: primary, OriginalTitle: primary}
}

func (f *fakeTitleRepository) addEpisode(id, seriesID string, season, episode int) {
	f.add(id, models.TitleTypeEpisode, id)
	f.infos[id] = models.EpisodeInfo{EpisodeID: id, SeriesID: seriesID, SeasonNumber: season, EpisodeNumber: episode}
}

func (f *fakeTitleRepository) FindByID(_ context.Context, id string) (*models.TitleRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.titles[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeTitleRepository) FindByIDAndType(ctx context.Context, id string, t models.TitleType) (*models.TitleRecord, error) {
	rec, err := f.FindByID(ctx, id)
	if err != nil || rec == nil || rec.TitleType != t {
		return nil, err
	}
	return rec, nil
}

func (f *fakeTitleRepository) FindByIDs(_ context.Context, ids []string) ([]models.TitleRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []models.TitleRecord
	// Reverse order, like a database that ignores the IN list order.
	for i := len(ids) - 1; i >= 0; i-- {
		if rec, ok := f.titles[ids[i]]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeTitleRepository) FindEpisodeInfos(_ context.Context, ids []string) ([]models.EpisodeInfo, error) {
	var out []models.EpisodeInfo
	for _, id := range ids {
		if info, ok := f.infos[id]; ok {
			out = append(out, info)
		}
	}
	return out, nil
}

func (f *fakeTitleRepository) FindEpisodes(_ context.Context, seriesID string, seasons []int) ([]repository.EpisodeRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	wanted := map[int]bool{}
	for _, s := range seasons {
		wanted[s] = true
	}
	var rows []repository.EpisodeRow
	for id, info := range f.infos {
		if info.SeriesID != seriesID || (len(seasons) > 0 && !wanted[info.SeasonNumber]) {
			continue
		}
		rows = append(rows, repository.EpisodeRow{
			TitleRecord:   f.titles[id],
			SeriesID:      info.SeriesID,
			SeasonNumber:  info.SeasonNumber,
			EpisodeNumber: info.EpisodeNumber,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if len(seasons) > 1 && rows[i].SeasonNumber != rows[j].SeasonNumber {
			return rows[i].SeasonNumber < rows[j].SeasonNumber
		}
		return rows[i].EpisodeNumber < rows[j].EpisodeNumber
	})
	return rows, nil
}

func (f *fakeTitleRepository) CountSeasons(_ context.Context, seriesID string) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	seen := map[int]bool{}
	for _, info := range f.infos {
		if info.SeriesID == seriesID {
			seen[info.SeasonNumber] = true
		}
	}
	return int64(len(seen)), nil
}

func (f *fakeTitleRepository) Search(_ context.Context, params repository.TitleSearchParams) ([]models.TitleRecord, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return f.searched, nil
}

type fakeNameRepository struct {
	names  map[string]models.Name
	text   string
	limit  int
	result []models.Name
}

func (f *fakeNameRepository) FindByID(_ context.Context, id string) (*models.Name, error) {
	if n, ok := f.names[id]; ok {
		return &n, nil
	}
	return nil, nil
}

func (f *fakeNameRepository) Search(_ context.Context, text string, limit int) ([]models.Name, error) {
	f.text, f.limit = text, limit
	return f.result, nil
}

type fakeRatingRepository struct {
	ratings map[string]models.Rating
}

func (f *fakeRatingRepository) FindByID(_ context.Context, id string) (*models.Rating, error) {
	if r, ok := f.ratings[id]; ok {
		return &r, nil
	}
	return nil, nil
}
