package models

// EpisodeInfo links an episode title to its series and carries its ordinals.
// Season 0 holds specials.
type EpisodeInfo struct {
	EpisodeID     string `gorm:"primaryKey;size:16" json:"episodeID" example:"tt0959621"`
	SeriesID      string `gorm:"not null;size:16;index:idx_episode_order,priority:1" json:"seriesID" example:"tt0903747"`
	SeasonNumber  int    `gorm:"not null;index:idx_episode_order,priority:2" json:"seasonNumber" example:"1"`
	EpisodeNumber int    `gorm:"not null;index:idx_episode_order,priority:3" json:"episodeNumber" example:"1"`
}

func (EpisodeInfo) TableName() string {
	return "episode_info"
}
