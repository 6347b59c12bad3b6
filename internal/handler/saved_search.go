package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dharmasatrya/flightoffers/internal/models"
	"github.com/dharmasatrya/flightoffers/internal/ranking"
	"github.com/dharmasatrya/flightoffers/internal/savedsearch"
)

type SavedSearchHandler struct {
	store  savedsearch.Store
	logger zerolog.Logger
}

func NewSavedSearchHandler(store savedsearch.Store, logger zerolog.Logger) *SavedSearchHandler {
	return &SavedSearchHandler{
		store:  store,
		logger: logger.With().Str("component", "saved_search_handler").Logger(),
	}
}

type savedSearchList struct {
	Count         int                       `json:"count"`
	SavedSearches []savedsearch.SavedSearch `json:"saved_searches"`
}

func (h *SavedSearchHandler) List(c echo.Context) error {
	list, err := h.store.List(c.Request().Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list saved searches")
		return errorJSON(c, http.StatusInternalServerError, "storage_error", "Failed to load saved searches")
	}

	return c.JSON(http.StatusOK, savedSearchList{Count: len(list), SavedSearches: list})
}

func (h *SavedSearchHandler) Create(c echo.Context) error {
	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid_request", "Failed to parse request body: "+err.Error())
	}
	if err := req.Validate(); err != nil {
		return errorJSON(c, http.StatusBadRequest, "validation_error", err.Error())
	}
	if _, err := ranking.ParsePolicy(req.SortBy); err != nil {
		return errorJSON(c, http.StatusBadRequest, "validation_error", err.Error())
	}

	saved, err := h.store.Save(c.Request().Context(), savedsearch.FromRequest(req))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to save search")
		return errorJSON(c, http.StatusInternalServerError, "storage_error", "Failed to save search")
	}

	return c.JSON(http.StatusCreated, saved)
}

func (h *SavedSearchHandler) Delete(c echo.Context) error {
	id := c.Param("id")

	if err := h.store.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, savedsearch.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "not_found", "Saved search "+id+" not found")
		}
		h.logger.Error().Err(err).Str("id", id).Msg("failed to delete saved search")
		return errorJSON(c, http.StatusInternalServerError, "storage_error", "Failed to delete saved search")
	}

	return c.NoContent(http.StatusNoContent)
}
