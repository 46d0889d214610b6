package models

import (
	"errors"
	"fmt"
	"strings"
)

type TitleType string

const (
	TitleTypeMovie   TitleType = "movie"
	TitleTypeSeries  TitleType = "series"
	TitleTypeEpisode TitleType = "episode"
)

var ErrUnknownTitleType = errors.New("unknown title type")

// TitleTypes lists every variant the catalog can hold.
func TitleTypes() []TitleType {
	return []TitleType{TitleTypeMovie, TitleTypeSeries, TitleTypeEpisode}
}

// ParseTitleType accepts the enum value in any letter case.
func ParseTitleType(value string) (TitleType, error) {
	switch t := TitleType(strings.ToLower(strings.TrimSpace(value))); t {
	case TitleTypeMovie, TitleTypeSeries, TitleTypeEpisode:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTitleType, value)
}

// TitleRecord is one row of the titles table. Every variant shares it.
type TitleRecord struct {
	ImdbID         string    `gorm:"primaryKey;size:16" json:"imdbID" example:"tt0133093"`
	TitleType      TitleType `gorm:"not null;index;size:16" json:"titleType" example:"movie"`
	PrimaryTitle   string    `gorm:"not null" json:"primaryTitle" example:"The Matrix"`
	OriginalTitle  string    `json:"originalTitle" example:"The Matrix"`
	IsAdult        bool      `json:"isAdult" example:"false"`
	StartYear      *int      `json:"startYear" example:"1999"`
	EndYear        *int      `json:"endYear"`
	Runtime        *int      `json:"runtime" example:"136"`
	Genres         *string   `json:"genres" example:"Action,Sci-Fi"`
	TitleSearchCol string    `gorm:"->:false;<-:false;type:tsvector GENERATED ALWAYS AS (to_tsvector('english', coalesce(primary_title, '') || ' ' || coalesce(original_title, ''))) STORED;index:idx_titles_search,type:gin" json:"-"`
}

func (TitleRecord) TableName() string {
	return "titles"
}

// Title is the closed set of title variants: *Movie, *Series and *Episode.
type Title interface {
	Record() *TitleRecord
	Type() TitleType
	TypeName() string
	isTitle()
}

type Movie struct {
	TitleRecord
}

func (m *Movie) Record() *TitleRecord { return &m.TitleRecord }
func (m *Movie) Type() TitleType      { return TitleTypeMovie }
func (m *Movie) TypeName() string     { return "Movie" }
func (*Movie) isTitle()               {}

// Series carries no stored extras; season counts and episode lists are
// looked up on demand.
type Series struct {
	TitleRecord
}

func (s *Series) Record() *TitleRecord { return &s.TitleRecord }
func (s *Series) Type() TitleType      { return TitleTypeSeries }
func (s *Series) TypeName() string     { return "Series" }
func (*Series) isTitle()               {}

// Episode pairs the title row with its episode_info row. Info is nil when the
// loader never wrote one.
type Episode struct {
	TitleRecord
	Info *EpisodeInfo
}

func (e *Episode) Record() *TitleRecord { return &e.TitleRecord }
func (e *Episode) Type() TitleType      { return TitleTypeEpisode }
func (e *Episode) TypeName() string     { return "Episode" }
func (*Episode) isTitle()               {}

func (e *Episode) SeasonNumber() *int {
	if e.Info == nil {
		return nil
	}
	n := e.Info.SeasonNumber
	return &n
}

func (e *Episode) EpisodeNumber() *int {
	if e.Info == nil {
		return nil
	}
	n := e.Info.EpisodeNumber
	return &n
}

// NewTitle wraps a row in the variant named by its discriminator. info is
// only used for episodes.
func NewTitle(rec TitleRecord, info *EpisodeInfo) (Title, error) {
	switch rec.TitleType {
	case TitleTypeMovie:
		return &Movie{TitleRecord: rec}, nil
	case TitleTypeSeries:
		return &Series{TitleRecord: rec}, nil
	case TitleTypeEpisode:
		return &Episode{TitleRecord: rec, Info: info}, nil
	}
	return nil, fmt.Errorf("%w: %q for %s", ErrUnknownTitleType, rec.TitleType, rec.ImdbID)
}
