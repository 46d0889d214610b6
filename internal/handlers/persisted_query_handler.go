package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"imdb-catalog/internal/query"
	"imdb-catalog/internal/services"
	"imdb-catalog/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	defaultPresignExpiry = 15 * time.Minute
	maxPresignExpiry     = 24 * time.Hour
)

type PersistedQueryWriter interface {
	Store(ctx context.Context, id string, document []byte) error
	PresignUpload(ctx context.Context, id string, expiry time.Duration) (*services.PresignedUpload, error)
}

type PersistedQueryHandler struct {
	store  PersistedQueryWriter
	logger *logrus.Logger
}

func NewPersistedQueryHandler(store PersistedQueryWriter, logger *logrus.Logger) *PersistedQueryHandler {
	return &PersistedQueryHandler{
		store:  store,
		logger: logger,
	}
}

// StoreQuery godoc
// @Summary Store a persisted query
// @Description Save a query document under an id so clients can run it with queryId
// @Tags persisted-queries
// @Accept json
// @Produce json
// @Param id path string true "Query id (letters, digits, - and _)"
// @Param request body query.Request true "Query document"
// @Success 201 {object} utils.StandardResponse
// @Failure 400 {object} utils.StandardResponse
// @Failure 500 {object} utils.StandardResponse
// @Router /queries/{id} [put]
func (h *PersistedQueryHandler) StoreQuery(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := services.PersistedQueryKey("", id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	var req query.Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query document: "+err.Error())
	}
	if strings.TrimSpace(req.Query) == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Query document is empty")
	}
	req.QueryID = ""

	doc, err := json.Marshal(req)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query document")
	}

	if err := h.store.Store(c.UserContext(), id, doc); err != nil {
		if errors.Is(err, services.ErrInvalidQueryID) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.WithError(err).WithField("query_id", id).Error("Failed to store persisted query")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store persisted query")
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, "Persisted query stored successfully", fiber.Map{
		"queryId": id,
	})
}

// GetPresignedURL godoc
// @Summary Get a presigned upload policy for a query document
// @Description Generate a presigned POST policy for uploading a query document straight to MinIO/S3. The policy limits the upload to one JSON document of at most 64 KiB.
// @Tags persisted-queries
// @Produce json
// @Param id path string true "Query id"
// @Param expiry query string false "URL lifetime" default(15m)
// @Success 200 {object} utils.StandardResponse
// @Failure 400 {object} utils.StandardResponse
// @Failure 500 {object} utils.StandardResponse
// @Router /queries/{id}/presign [get]
func (h *PersistedQueryHandler) GetPresignedURL(c *fiber.Ctx) error {
	id := c.Params("id")

	expiry := defaultPresignExpiry
	if raw := c.Query("expiry"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 || d > maxPresignExpiry {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "expiry must be a positive duration of at most 24h")
		}
		expiry = d
	}

	upload, err := h.store.PresignUpload(c.UserContext(), id, expiry)
	if err != nil {
		if errors.Is(err, services.ErrInvalidQueryID) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.WithError(err).Error("Failed to generate presigned URL")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate presigned URL")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Presigned URL generated successfully", fiber.Map{
		"queryId":       id,
		"presigned_url": upload.URL,
		"form_data":     upload.FormData,
		"expires_in":    expiry.String(),
	})
}
