package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"imdb-catalog/internal/database"
	"imdb-catalog/internal/models"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike neutralises LIKE metacharacters so text matches literally
// under ESCAPE '\'.
func EscapeLike(text string) string {
	return likeEscaper.Replace(text)
}

type NameRepository interface {
	FindByID(ctx context.Context, imdbID string) (*models.Name, error)
	Search(ctx context.Context, text string, limit int) ([]models.Name, error)
}

type nameRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewNameRepository(db *database.Database) NameRepository {
	return &nameRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *nameRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *nameRepository) FindByID(ctx context.Context, imdbID string) (*models.Name, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var name models.Name
	err := r.db.WithContext(ctx).Where("imdb_id = ?", imdbID).First(&name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find name %s: %w", imdbID, err)
	}
	return &name, nil
}

// Search is a case-insensitive contains match on primary_name.
func (r *nameRepository) Search(ctx context.Context, text string, limit int) ([]models.Name, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var names []models.Name
	err := r.db.WithContext(ctx).
		Where(`primary_name ILIKE ? ESCAPE '\'`, "%"+EscapeLike(text)+"%").
		Order("primary_name ASC, birth_year ASC").
		Limit(limit).
		Find(&names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search names: %w", err)
	}
	return names, nil
}
