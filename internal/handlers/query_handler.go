package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"imdb-catalog/internal/query"
	"imdb-catalog/internal/services"
	"imdb-catalog/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Executor runs one query document.
type Executor interface {
	Execute(ctx context.Context, req *query.Request) *query.Response
}

// PersistedQueryLoader fetches stored query documents by id.
type PersistedQueryLoader interface {
	Fetch(ctx context.Context, id string) ([]byte, error)
}

type QueryHandler struct {
	executor Executor
	loader   PersistedQueryLoader
	logger   *logrus.Logger
}

// NewQueryHandler builds the query endpoints. loader may be nil when
// persisted queries are disabled.
func NewQueryHandler(executor Executor, loader PersistedQueryLoader, logger *logrus.Logger) *QueryHandler {
	return &QueryHandler{
		executor: executor,
		loader:   loader,
		logger:   logger,
	}
}

// ExecuteQuery godoc
// @Summary Execute a catalog query
// @Description Run a GraphQL document over titles, episodes, names and ratings. Field failures are reported in errors next to partial data. Send queryId instead of query to run a persisted document; variables and operationName sent with it take precedence over the stored ones.
// @Tags query
// @Accept json
// @Produce json
// @Param X-Request-ID header string false "Request id, generated when absent"
// @Param request body query.Request true "Query document"
// @Success 200 {object} query.Response "Query result"
// @Failure 400 {object} utils.StandardResponse "Malformed query document"
// @Failure 404 {object} utils.StandardResponse "Persisted query not found"
// @Failure 429 {object} utils.StandardResponse "Rate limit exceeded"
// @Router /query [post]
func (h *QueryHandler) ExecuteQuery(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req query.Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query document: "+err.Error())
	}

	if strings.TrimSpace(req.Query) == "" && req.QueryID != "" {
		persisted, status, err := h.loadPersisted(ctx, req.QueryID)
		if err != nil {
			return utils.ErrorResponse(c, status, err.Error())
		}
		req.Query = persisted.Query
		if req.OperationName == "" {
			req.OperationName = persisted.OperationName
		}
		if req.Variables == nil {
			req.Variables = persisted.Variables
		}
	}

	if strings.TrimSpace(req.Query) == "" {
		return utils.ErrorWithDataResponse(c, fiber.StatusBadRequest, "Query document is empty", query.ExampleRequest())
	}

	return c.Status(fiber.StatusOK).JSON(h.executor.Execute(ctx, &req))
}

func (h *QueryHandler) loadPersisted(ctx context.Context, id string) (*query.Request, int, error) {
	if h.loader == nil {
		return nil, fiber.StatusBadRequest, errors.New("persisted queries are disabled")
	}

	doc, err := h.loader.Fetch(ctx, id)
	switch {
	case errors.Is(err, services.ErrInvalidQueryID):
		return nil, fiber.StatusBadRequest, err
	case errors.Is(err, services.ErrPersistedQueryAbsent):
		return nil, fiber.StatusNotFound, err
	case err != nil:
		h.logger.WithError(err).WithField("query_id", id).Error("Failed to load persisted query")
		return nil, fiber.StatusBadGateway, errors.New("failed to load persisted query")
	}

	var persisted query.Request
	if err := json.Unmarshal(doc, &persisted); err != nil {
		h.logger.WithError(err).WithField("query_id", id).Warn("Persisted query is not valid JSON")
		return nil, fiber.StatusUnprocessableEntity, errors.New("persisted query is malformed")
	}
	return &persisted, fiber.StatusOK, nil
}

// ExampleQuery godoc
// @Summary Show an example query
// @Description Returns an example request together with the schema in GraphQL SDL
// @Tags query
// @Produce json
// @Success 200 {object} utils.StandardResponse "Example query and schema"
// @Router /query [get]
func (h *QueryHandler) ExampleQuery(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, fiber.StatusOK, "POST a query document to this endpoint", fiber.Map{
		"example": query.ExampleRequest(),
		"sdl":     query.Schema(),
	})
}

// GetSchema godoc
// @Summary Describe the query schema
// @Description GraphQL SDL with the types, fields, arguments and argument defaults accepted by the query endpoint
// @Tags query
// @Produce json
// @Success 200 {object} utils.StandardResponse "Schema description"
// @Router /schema [get]
func (h *QueryHandler) GetSchema(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, fiber.StatusOK, "Schema retrieved successfully", fiber.Map{
		"sdl": query.Schema(),
	})
}
