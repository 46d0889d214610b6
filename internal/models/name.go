package models

import "strings"

type Name struct {
	ImdbID            string  `gorm:"primaryKey;size:16" json:"imdbID" example:"nm0000206"`
	PrimaryName       string  `gorm:"not null;index" json:"primaryName" example:"Keanu Reeves"`
	BirthYear         *int    `json:"birthYear" example:"1964"`
	DeathYear         *int    `json:"deathYear"`
	PrimaryProfession *string `json:"primaryProfession" example:"actor,producer,soundtrack"`
	KnownForTitles    *string `json:"knownForTitles" example:"tt0133093,tt0234215"`
}

func (Name) TableName() string {
	return "names"
}

// KnownForIDs splits knownForTitles into title ids. ok is false when the
// column is NULL; an empty string yields an empty, non-nil slice.
func (n *Name) KnownForIDs() (ids []string, ok bool) {
	if n.KnownForTitles == nil {
		return nil, false
	}
	ids = []string{}
	for _, id := range strings.Split(*n.KnownForTitles, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, true
}
