package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"imdb-catalog/internal/database"
	"imdb-catalog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// textSearchConfig is the Postgres text search configuration the
	// title_search_col vector is built with.
	textSearchConfig = "english"

	// popularVotes splits titles into the two leading rank buckets.
	popularVotes = 1000
)

// titleColumns never includes title_search_col.
var titleColumns = []string{
	"titles.imdb_id",
	"titles.title_type",
	"titles.primary_title",
	"titles.original_title",
	"titles.is_adult",
	"titles.start_year",
	"titles.end_year",
	"titles.runtime",
	"titles.genres",
}

// titleSearchOrder is the composite rank key: popularity bucket, exact
// title match, vote count, then text relevance.
const titleSearchOrder = `(ratings.num_votes >= ?) DESC, ` +
	`(titles.primary_title ILIKE ? ESCAPE '\') DESC, ` +
	`ratings.num_votes DESC, ` +
	`ts_rank_cd(titles.title_search_col, phraseto_tsquery(?, ?), 1) DESC`

// EpisodeRow is an episode title joined with its episode_info row.
type EpisodeRow struct {
	models.TitleRecord
	SeriesID      string
	SeasonNumber  int
	EpisodeNumber int
}

func (r EpisodeRow) Info() *models.EpisodeInfo {
	return &models.EpisodeInfo{
		EpisodeID:     r.ImdbID,
		SeriesID:      r.SeriesID,
		SeasonNumber:  r.SeasonNumber,
		EpisodeNumber: r.EpisodeNumber,
	}
}

type TitleSearchParams struct {
	Text  string
	Types []models.TitleType
	Limit int
}

type TitleRepository interface {
	// Key lookups; a miss returns (nil, nil).
	FindByID(ctx context.Context, imdbID string) (*models.TitleRecord, error)
	FindByIDAndType(ctx context.Context, imdbID string, titleType models.TitleType) (*models.TitleRecord, error)
	FindByIDs(ctx context.Context, imdbIDs []string) ([]models.TitleRecord, error)

	// Episode linkage
	FindEpisodeInfos(ctx context.Context, episodeIDs []string) ([]models.EpisodeInfo, error)
	FindEpisodes(ctx context.Context, seriesID string, seasons []int) ([]EpisodeRow, error)
	CountSeasons(ctx context.Context, seriesID string) (int64, error)

	// Ranked full-text search
	Search(ctx context.Context, params TitleSearchParams) ([]models.TitleRecord, error)
}

type titleRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewTitleRepository(db *database.Database) TitleRepository {
	return &titleRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *titleRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *titleRepository) FindByID(ctx context.Context, imdbID string) (*models.TitleRecord, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var title models.TitleRecord
	err := r.db.WithContext(ctx).Select(titleColumns).Where("titles.imdb_id = ?", imdbID).First(&title).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find title %s: %w", imdbID, err)
	}
	return &title, nil
}

func (r *titleRepository) FindByIDAndType(ctx context.Context, imdbID string, titleType models.TitleType) (*models.TitleRecord, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var title models.TitleRecord
	err := r.db.WithContext(ctx).Select(titleColumns).
		Where("titles.imdb_id = ? AND titles.title_type = ?", imdbID, string(titleType)).
		First(&title).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find %s %s: %w", titleType, imdbID, err)
	}
	return &title, nil
}

// FindByIDs returns the titles that exist, in no particular order.
func (r *titleRepository) FindByIDs(ctx context.Context, imdbIDs []string) ([]models.TitleRecord, error) {
	if len(imdbIDs) == 0 {
		return []models.TitleRecord{}, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var titles []models.TitleRecord
	if err := r.db.WithContext(ctx).Select(titleColumns).Where("titles.imdb_id IN ?", imdbIDs).Find(&titles).Error; err != nil {
		return nil, fmt.Errorf("failed to find titles: %w", err)
	}
	return titles, nil
}

func (r *titleRepository) FindEpisodeInfos(ctx context.Context, episodeIDs []string) ([]models.EpisodeInfo, error) {
	if len(episodeIDs) == 0 {
		return []models.EpisodeInfo{}, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var infos []models.EpisodeInfo
	if err := r.db.WithContext(ctx).Where("episode_id IN ?", episodeIDs).Find(&infos).Error; err != nil {
		return nil, fmt.Errorf("failed to find episode info: %w", err)
	}
	return infos, nil
}

// FindEpisodes lists a series' episodes, optionally restricted to seasons.
// Within zero or one requested season the order is episode number alone;
// across several seasons the season number leads.
func (r *titleRepository) FindEpisodes(ctx context.Context, seriesID string, seasons []int) ([]EpisodeRow, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	columns := append(append([]string{}, titleColumns...),
		"episode_info.series_id",
		"episode_info.season_number",
		"episode_info.episode_number",
	)

	query := r.db.WithContext(ctx).Model(&models.TitleRecord{}).
		Select(columns).
		Joins("JOIN episode_info ON episode_info.episode_id = titles.imdb_id").
		Where("episode_info.series_id = ?", seriesID)

	if len(seasons) > 0 {
		query = query.Where("episode_info.season_number IN ?", seasons)
	}

	var rows []EpisodeRow
	if err := query.Order(episodeOrder(seasons)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find episodes of %s: %w", seriesID, err)
	}
	return rows, nil
}

func episodeOrder(seasons []int) string {
	if len(seasons) > 1 {
		return "episode_info.season_number, episode_info.episode_number"
	}
	return "episode_info.episode_number"
}

// CountSeasons counts distinct season numbers, so gaps are not counted.
func (r *titleRepository) CountSeasons(ctx context.Context, seriesID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int64
	err := r.db.WithContext(ctx).Model(&models.EpisodeInfo{}).
		Where("series_id = ?", seriesID).
		Distinct("season_number").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count seasons of %s: %w", seriesID, err)
	}
	return count, nil
}

// Search expects params.Text to be sanitized already. The text only ever
// reaches the database as a bound parameter.
func (r *titleRepository) Search(ctx context.Context, params TitleSearchParams) ([]models.TitleRecord, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := r.db.WithContext(ctx).Model(&models.TitleRecord{}).
		Select(titleColumns).
		Joins("JOIN ratings ON ratings.imdb_id = titles.imdb_id").
		Where("titles.title_search_col @@ phraseto_tsquery(?, ?)", textSearchConfig, params.Text)

	if len(params.Types) > 0 {
		types := make([]string, len(params.Types))
		for i, t := range params.Types {
			types[i] = string(t)
		}
		query = query.Where("titles.title_type IN ?", types)
	}

	order := clause.OrderBy{Expression: clause.Expr{
		SQL:                titleSearchOrder,
		Vars:               []interface{}{popularVotes, EscapeLike(params.Text), textSearchConfig, params.Text},
		WithoutParentheses: true,
	}}

	var titles []models.TitleRecord
	if err := query.Clauses(order).Limit(params.Limit).Find(&titles).Error; err != nil {
		return nil, fmt.Errorf("failed to search titles: %w", err)
	}
	return titles, nil
}
