package services

import (
	"context"

	"imdb-catalog/internal/database"
	"imdb-catalog/internal/repository"

	"github.com/sirupsen/logrus"
)

// CatalogProvider hands out a CatalogService bound to one pooled connection
// for the lifetime of a request.
type CatalogProvider struct {
	db     *database.Database
	logger *logrus.Logger
}

func NewCatalogProvider(db *database.Database, logger *logrus.Logger) *CatalogProvider {
	return &CatalogProvider{db: db, logger: logger}
}

// WithCatalog runs fn with a request-scoped catalog. The connection is
// released when fn returns. The returned error is fn's, or the failure to
// acquire a connection.
func (p *CatalogProvider) WithCatalog(ctx context.Context, fn func(CatalogService) error) error {
	return p.db.WithConnection(ctx, func(conn *database.Database) error {
		return fn(NewCatalogService(
			repository.NewTitleRepository(conn),
			repository.NewNameRepository(conn),
			repository.NewRatingRepository(conn),
			p.logger,
		))
	})
}
