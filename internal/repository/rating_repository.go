package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"imdb-catalog/internal/database"
	"imdb-catalog/internal/models"

	"gorm.io/gorm"
)

type RatingRepository interface {
	FindByID(ctx context.Context, imdbID string) (*models.Rating, error)
}

type ratingRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewRatingRepository(db *database.Database) RatingRepository {
	return &ratingRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *ratingRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *ratingRepository) FindByID(ctx context.Context, imdbID string) (*models.Rating, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rating models.Rating
	err := r.db.WithContext(ctx).Where("imdb_id = ?", imdbID).First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find rating %s: %w", imdbID, err)
	}
	return &rating, nil
}
