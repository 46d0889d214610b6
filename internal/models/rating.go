package models

type Rating struct {
	ImdbID        string  `gorm:"primaryKey;size:16" json:"imdbID" example:"tt0133093"`
	AverageRating float64 `gorm:"not null" json:"averageRating" example:"8.7"`
	NumVotes      int64   `gorm:"not null;index" json:"numVotes" example:"2100000"`
}

func (Rating) TableName() string {
	return "ratings"
}
