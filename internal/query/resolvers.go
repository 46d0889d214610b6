package query

import (
	"context"
	"errors"
	"sync"

	"imdb-catalog/internal/models"
	"imdb-catalog/internal/services"
)

type catalogKey struct{}

func withCatalog(ctx context.Context, catalog services.CatalogService) context.Context {
	return context.WithValue(ctx, catalogKey{}, catalog)
}

func catalogFrom(ctx context.Context) (services.CatalogService, error) {
	catalog, ok := ctx.Value(catalogKey{}).(services.CatalogService)
	if !ok || catalog == nil {
		return nil, errors.New("no catalog session bound to the request")
	}
	return catalog, nil
}

func int32Ptr(n *int) *int32 {
	if n == nil {
		return nil
	}
	v := int32(*n)
	return &v
}

// rootResolver serves the Query type.
type rootResolver struct {
	maxResults int
}

type idArgs struct {
	ImdbID string
}

type titleSearchArgs struct {
	Title  string
	Types  *[]string
	Result *int32
}

type nameSearchArgs struct {
	Name   string
	Result *int32
}

// limit applies the declared default to an explicit null and clamps large
// values to maxResults.
func (r *rootResolver) limit(result *int32, def int) (int, error) {
	if result == nil {
		return def, nil
	}
	n := int(*result)
	if n < 1 {
		return 0, validationErrorf("result must be a positive integer, got %d", n)
	}
	if n > r.maxResults {
		return r.maxResults, nil
	}
	return n, nil
}

func (r *rootResolver) Title(ctx context.Context, args idArgs) (*titleResolver, error) {
	catalog, err := catalogFrom(ctx)
	if err != nil {
		return nil, err
	}
	title, err := catalog.ResolveTitle(ctx, args.ImdbID)
	if err != nil {
		return nil, err
	}
	return newTitleResolver(catalog, title), nil
}

func (r *rootResolver) Movie(ctx context.Context, args idArgs) (*movieResolver, error) {
	catalog, err := catalogFrom(ctx)
	if err != nil {
		return nil, err
	}
	movie, err := catalog.ResolveMovie(ctx, args.ImdbID)
	if err != nil {
		return nil, err
	}
	return newMovieResolver(catalog, movie), nil
}

func (r *rootResolver) Series(ctx context.Context, args idArgs) (*seriesResolver, error) {
	catalog, err := catalogFrom(ctx)
	if err != nil {
		return nil, err
	}
	series, err := catalog.ResolveSeries(ctx, args.ImdbID)
	if err != nil {
		return nil, err
	}
	return newSeriesResolver(catalog, series), nil
}

func (r *rootResolver) Episode(ctx context.Context, args idArgs) (*episodeResolver, error) {
	catalog, err := catalogFrom(ctx)
	if err != nil {
		return nil, err
	}
	episode, err := catalog.ResolveEpisode(ctx, args.ImdbID)
	if err != nil {
		return nil, err
	}
	return newEpisodeResolver(catalog, episode), nil
}

func (r *rootResolver) Name(ctx context.Context, args idArgs) (*nameResolver, error) {
	catalog, err := catalogFrom(ctx)
	if err != nil {
		return nil, err
	}
	name, err := catalog.ResolveName(ctx, args.ImdbID)
	if err != nil || name == nil {
		return nil, err
	}
	return &nameResolver{catalog: catalog, name: name}, nil
}

func (r *rootResolver) Rating(ctx context.Context, args idArgs) (*ratingResolver, error) {
	catalog, err := catalogFrom(ctx)
	if err != nil {
		return nil, err
	}
	rating, err := catalog.ResolveRating(ctx, args.ImdbID)
	if err != nil || rating == nil {
		return nil, err
	}
	return &ratingResolver{rating: rating}, nil
}

func (r *rootResolver) TitleSearch(ctx context.Context, args titleSearchArgs) (*[]*titleResolver, error) {
	limit, err := r.limit(args.Result, services.DefaultTitleSearchLimit)
	if err != nil {
		return nil, err
	}

	var types []models.TitleType
	if args.Types != nil {
		for _, value := range *args.Types {
			t, err := models.ParseTitleType(value)
			if err != nil {
				return nil, &ValidationError{Message: err.Error()}
			}
			types = append(types, t)
		}
	}

	catalog, err := catalogFrom(ctx)
	if err != nil {
		return nil, err
	}
	titles, err := catalog.SearchTitles(ctx, args.Title, types, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*titleResolver, len(titles))
	for i, title := range titles {
		out[i] = newTitleResolver(catalog, title)
	}
	return &out, nil
}

func (r *rootResolver) NameSearch(ctx context.Context, args nameSearchArgs) (*[]*nameResolver, error) {
	limit, err := r.limit(args.Result, services.DefaultNameSearchLimit)
	if err != nil {
		return nil, err
	}

	catalog, err := catalogFrom(ctx)
	if err != nil {
		return nil, err
	}
	names, err := catalog.SearchNames(ctx, args.Name, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*nameResolver, len(names))
	for i := range names {
		out[i] = &nameResolver{catalog: catalog, name: &names[i]}
	}
	return &out, nil
}

// titleFields resolves the fields every title variant shares. The rating
// row is looked up once per title.
type titleFields struct {
	catalog services.CatalogService
	rec     *models.TitleRecord

	mu           sync.Mutex
	rating       *models.Rating
	ratingLoaded bool
}

func (t *titleFields) ImdbID() string {
	return t.rec.ImdbID
}

func (t *titleFields) TitleType() string {
	return string(t.rec.TitleType)
}

func (t *titleFields) PrimaryTitle() string {
	return t.rec.PrimaryTitle
}

func (t *titleFields) OriginalTitle() string {
	return t.rec.OriginalTitle
}

func (t *titleFields) IsAdult() bool {
	return t.rec.IsAdult
}

func (t *titleFields) StartYear() *int32 {
	return int32Ptr(t.rec.StartYear)
}

func (t *titleFields) EndYear() *int32 {
	return int32Ptr(t.rec.EndYear)
}

func (t *titleFields) Runtime() *int32 {
	return int32Ptr(t.rec.Runtime)
}

func (t *titleFields) Genres() *string {
	return t.rec.Genres
}

func (t *titleFields) loadRating(ctx context.Context) (*models.Rating, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ratingLoaded {
		return t.rating, nil
	}
	rating, err := t.catalog.ResolveRating(ctx, t.rec.ImdbID)
	if err != nil {
		return nil, err
	}
	t.rating, t.ratingLoaded = rating, true
	return rating, nil
}

func (t *titleFields) AverageRating(ctx context.Context) (*float64, error) {
	rating, err := t.loadRating(ctx)
	if err != nil || rating == nil {
		return nil, err
	}
	avg := rating.AverageRating
	return &avg, nil
}

func (t *titleFields) NumVotes(ctx context.Context) (*int32, error) {
	rating, err := t.loadRating(ctx)
	if err != nil || rating == nil {
		return nil, err
	}
	votes := int32(rating.NumVotes)
	return &votes, nil
}

// titleResolver serves the Title interface and narrows to the concrete
// variant for type conditions.
type titleResolver struct {
	titleFields
	title models.Title
}

func newTitleResolver(catalog services.CatalogService, title models.Title) *titleResolver {
	if title == nil {
		return nil
	}
	return &titleResolver{
		titleFields: titleFields{catalog: catalog, rec: title.Record()},
		title:       title,
	}
}

func (r *titleResolver) ToMovie() (*movieResolver, bool) {
	movie, ok := r.title.(*models.Movie)
	if !ok {
		return nil, false
	}
	return newMovieResolver(r.catalog, movie), true
}

func (r *titleResolver) ToSeries() (*seriesResolver, bool) {
	series, ok := r.title.(*models.Series)
	if !ok {
		return nil, false
	}
	return newSeriesResolver(r.catalog, series), true
}

func (r *titleResolver) ToEpisode() (*episodeResolver, bool) {
	episode, ok := r.title.(*models.Episode)
	if !ok {
		return nil, false
	}
	return newEpisodeResolver(r.catalog, episode), true
}

type movieResolver struct {
	titleFields
}

func newMovieResolver(catalog services.CatalogService, movie *models.Movie) *movieResolver {
	if movie == nil {
		return nil
	}
	return &movieResolver{titleFields: titleFields{catalog: catalog, rec: movie.Record()}}
}

type seriesResolver struct {
	titleFields
}

func newSeriesResolver(catalog services.CatalogService, series *models.Series) *seriesResolver {
	if series == nil {
		return nil
	}
	return &seriesResolver{titleFields: titleFields{catalog: catalog, rec: series.Record()}}
}

type seasonArgs struct {
	Season *[]int32
}

// TotalSeasons is recounted on every request.
func (r *seriesResolver) TotalSeasons(ctx context.Context) (*int32, error) {
	n, err := r.catalog.TotalSeasons(ctx, r.rec.ImdbID)
	if err != nil {
		return nil, err
	}
	total := int32(n)
	return &total, nil
}

// Episodes treats an empty or null season list as no filter.
func (r *seriesResolver) Episodes(ctx context.Context, args seasonArgs) (*[]*episodeResolver, error) {
	var seasons []int
	if args.Season != nil {
		for _, season := range *args.Season {
			seasons = append(seasons, int(season))
		}
	}

	episodes, err := r.catalog.EpisodesOf(ctx, r.rec.ImdbID, seasons)
	if err != nil {
		return nil, err
	}

	out := make([]*episodeResolver, len(episodes))
	for i, episode := range episodes {
		out[i] = newEpisodeResolver(r.catalog, episode)
	}
	return &out, nil
}

type episodeResolver struct {
	titleFields
	episode *models.Episode
}

func newEpisodeResolver(catalog services.CatalogService, episode *models.Episode) *episodeResolver {
	if episode == nil {
		return nil
	}
	return &episodeResolver{
		titleFields: titleFields{catalog: catalog, rec: episode.Record()},
		episode:     episode,
	}
}

func (r *episodeResolver) SeasonNumber() *int32 {
	return int32Ptr(r.episode.SeasonNumber())
}

func (r *episodeResolver) EpisodeNumber() *int32 {
	return int32Ptr(r.episode.EpisodeNumber())
}

func (r *episodeResolver) Series(ctx context.Context) (*seriesResolver, error) {
	series, err := r.catalog.SeriesOf(ctx, r.episode)
	if err != nil {
		return nil, err
	}
	return newSeriesResolver(r.catalog, series), nil
}

type nameResolver struct {
	catalog services.CatalogService
	name    *models.Name
}

func (r *nameResolver) ImdbID() string {
	return r.name.ImdbID
}

func (r *nameResolver) PrimaryName() string {
	return r.name.PrimaryName
}

func (r *nameResolver) BirthYear() *int32 {
	return int32Ptr(r.name.BirthYear)
}

func (r *nameResolver) DeathYear() *int32 {
	return int32Ptr(r.name.DeathYear)
}

func (r *nameResolver) PrimaryProfession() *string {
	return r.name.PrimaryProfession
}

// KnownForTitles is null when the name has no list at all and keeps a null
// entry for every id that resolves to nothing.
func (r *nameResolver) KnownForTitles(ctx context.Context) (*[]*titleResolver, error) {
	titles, present, err := r.catalog.TitlesKnownFor(ctx, r.name)
	if err != nil || !present {
		return nil, err
	}

	out := make([]*titleResolver, len(titles))
	for i, title := range titles {
		out[i] = newTitleResolver(r.catalog, title)
	}
	return &out, nil
}

type ratingResolver struct {
	rating *models.Rating
}

func (r *ratingResolver) ImdbID() string {
	return r.rating.ImdbID
}

func (r *ratingResolver) AverageRating() float64 {
	return r.rating.AverageRating
}

func (r *ratingResolver) NumVotes() int32 {
	return int32(r.rating.NumVotes)
}
