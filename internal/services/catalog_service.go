package services

import (
	"context"
	"fmt"

	"imdb-catalog/internal/models"
	"imdb-catalog/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	DefaultTitleSearchLimit = 5
	DefaultNameSearchLimit  = 10
)

// CatalogService resolves catalog entities for a single request. Lookups
// that match nothing return a nil value and a nil error.
type CatalogService interface {
	// Entity resolvers
	ResolveTitle(ctx context.Context, imdbID string) (models.Title, error)
	ResolveMovie(ctx context.Context, imdbID string) (*models.Movie, error)
	ResolveSeries(ctx context.Context, imdbID string) (*models.Series, error)
	ResolveEpisode(ctx context.Context, imdbID string) (*models.Episode, error)
	ResolveName(ctx context.Context, imdbID string) (*models.Name, error)
	ResolveRating(ctx context.Context, imdbID string) (*models.Rating, error)
	TotalSeasons(ctx context.Context, seriesID string) (int, error)

	// Relationship traversal
	EpisodesOf(ctx context.Context, seriesID string, seasons []int) ([]*models.Episode, error)
	SeriesOf(ctx context.Context, episode *models.Episode) (*models.Series, error)
	TitlesKnownFor(ctx context.Context, name *models.Name) ([]models.Title, bool, error)

	// Search
	SearchTitles(ctx context.Context, text string, types []models.TitleType, limit int) ([]models.Title, error)
	SearchNames(ctx context.Context, text string, limit int) ([]models.Name, error)
}

type catalogService struct {
	titles  repository.TitleRepository
	names   repository.NameRepository
	ratings repository.RatingRepository
	logger  *logrus.Logger
}

func NewCatalogService(titles repository.TitleRepository, names repository.NameRepository, ratings repository.RatingRepository, logger *logrus.Logger) CatalogService {
	return &catalogService{
		titles:  titles,
		names:   names,
		ratings: ratings,
		logger:  logger,
	}
}

func (s *catalogService) ResolveTitle(ctx context.Context, imdbID string) (models.Title, error) {
	rec, err := s.titles.FindByID(ctx, imdbID)
	if err != nil || rec == nil {
		return nil, err
	}
	titles, err := s.wrapTitles(ctx, []models.TitleRecord{*rec})
	if err != nil {
		return nil, err
	}
	return titles[0], nil
}

func (s *catalogService) ResolveMovie(ctx context.Context, imdbID string) (*models.Movie, error) {
	rec, err := s.titles.FindByIDAndType(ctx, imdbID, models.TitleTypeMovie)
	if err != nil || rec == nil {
		return nil, err
	}
	return &models.Movie{TitleRecord: *rec}, nil
}

func (s *catalogService) ResolveSeries(ctx context.Context, imdbID string) (*models.Series, error) {
	rec, err := s.titles.FindByIDAndType(ctx, imdbID, models.TitleTypeSeries)
	if err != nil || rec == nil {
		return nil, err
	}
	return &models.Series{TitleRecord: *rec}, nil
}

func (s *catalogService) ResolveEpisode(ctx context.Context, imdbID string) (*models.Episode, error) {
	rec, err := s.titles.FindByIDAndType(ctx, imdbID, models.TitleTypeEpisode)
	if err != nil || rec == nil {
		return nil, err
	}
	infos, err := s.episodeInfos(ctx, []string{rec.ImdbID})
	if err != nil {
		return nil, err
	}
	return &models.Episode{TitleRecord: *rec, Info: infos[rec.ImdbID]}, nil
}

func (s *catalogService) ResolveName(ctx context.Context, imdbID string) (*models.Name, error) {
	return s.names.FindByID(ctx, imdbID)
}

func (s *catalogService) ResolveRating(ctx context.Context, imdbID string) (*models.Rating, error) {
	return s.ratings.FindByID(ctx, imdbID)
}

// TotalSeasons is recomputed on every call.
func (s *catalogService) TotalSeasons(ctx context.Context, seriesID string) (int, error) {
	count, err := s.titles.CountSeasons(ctx, seriesID)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// EpisodesOf keeps the repository's ordering.
func (s *catalogService) EpisodesOf(ctx context.Context, seriesID string, seasons []int) ([]*models.Episode, error) {
	rows, err := s.titles.FindEpisodes(ctx, seriesID, seasons)
	if err != nil {
		return nil, err
	}

	episodes := make([]*models.Episode, 0, len(rows))
	for _, row := range rows {
		episodes = append(episodes, &models.Episode{TitleRecord: row.TitleRecord, Info: row.Info()})
	}
	return episodes, nil
}

// SeriesOf follows the episode's series reference. A dangling reference or
// an episode without info resolves to nil.
func (s *catalogService) SeriesOf(ctx context.Context, episode *models.Episode) (*models.Series, error) {
	if episode == nil || episode.Info == nil {
		return nil, nil
	}
	series, err := s.ResolveSeries(ctx, episode.Info.SeriesID)
	if err != nil {
		return nil, err
	}
	if series == nil {
		s.logger.WithFields(logrus.Fields{
			"episode_id": episode.ImdbID,
			"series_id":  episode.Info.SeriesID,
		}).Debug("Episode references a missing series")
	}
	return series, nil
}

// TitlesKnownFor resolves knownForTitles in stored order with one batch
// lookup. Ids that resolve to nothing keep their position as nil entries.
// present is false when the name has no knownForTitles value at all.
func (s *catalogService) TitlesKnownFor(ctx context.Context, name *models.Name) ([]models.Title, bool, error) {
	if name == nil {
		return nil, false, nil
	}
	ids, present := name.KnownForIDs()
	if !present {
		return nil, false, nil
	}

	recs, err := s.titles.FindByIDs(ctx, ids)
	if err != nil {
		return nil, true, err
	}
	found, err := s.wrapTitles(ctx, recs)
	if err != nil {
		return nil, true, err
	}

	byID := make(map[string]models.Title, len(found))
	for _, t := range found {
		byID[t.Record().ImdbID] = t
	}

	titles := make([]models.Title, len(ids))
	for i, id := range ids {
		titles[i] = byID[id]
	}
	return titles, true, nil
}

func (s *catalogService) SearchTitles(ctx context.Context, text string, types []models.TitleType, limit int) ([]models.Title, error) {
	clean, err := SanitizeSearchText(text)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = DefaultTitleSearchLimit
	}

	recs, err := s.titles.Search(ctx, repository.TitleSearchParams{
		Text:  clean,
		Types: types,
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}
	return s.wrapTitles(ctx, recs)
}

func (s *catalogService) SearchNames(ctx context.Context, text string, limit int) ([]models.Name, error) {
	clean, err := SanitizeSearchText(text)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = DefaultNameSearchLimit
	}
	return s.names.Search(ctx, clean, limit)
}

// wrapTitles turns rows into variants, loading episode info for all episode
// rows in one query. Input order is kept.
func (s *catalogService) wrapTitles(ctx context.Context, recs []models.TitleRecord) ([]models.Title, error) {
	var episodeIDs []string
	for _, rec := range recs {
		if rec.TitleType == models.TitleTypeEpisode {
			episodeIDs = append(episodeIDs, rec.ImdbID)
		}
	}

	infos, err := s.episodeInfos(ctx, episodeIDs)
	if err != nil {
		return nil, err
	}

	titles := make([]models.Title, 0, len(recs))
	for _, rec := range recs {
		title, err := models.NewTitle(rec, infos[rec.ImdbID])
		if err != nil {
			s.logger.WithError(err).WithField("imdb_id", rec.ImdbID).Error("Title row has an unknown variant")
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, nil
}

func (s *catalogService) episodeInfos(ctx context.Context, episodeIDs []string) (map[string]*models.EpisodeInfo, error) {
	byID := make(map[string]*models.EpisodeInfo, len(episodeIDs))
	if len(episodeIDs) == 0 {
		return byID, nil
	}

	infos, err := s.titles.FindEpisodeInfos(ctx, episodeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load episode info: %w", err)
	}
	for i := range infos {
		byID[infos[i].EpisodeID] = &infos[i]
	}
	return byID, nil
}
