package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dharmasatrya/flightoffers/internal/models"
	"github.com/dharmasatrya/flightoffers/internal/providers"
	"github.com/dharmasatrya/flightoffers/internal/ranking"
	"github.com/dharmasatrya/flightoffers/internal/search"
	"github.com/dharmasatrya/flightoffers/pkg/currency"
)

type SearchHandler struct {
	service *search.Service
	logger  zerolog.Logger
}

func NewSearchHandler(service *search.Service, logger zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		service: service,
		logger:  logger.With().Str("component", "search_handler").Logger(),
	}
}

func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid_request", "Failed to parse request body: "+err.Error())
	}

	if err := req.Validate(); err != nil {
		return errorJSON(c, http.StatusBadRequest, "validation_error", err.Error())
	}

	result, err := h.service.Search(ctx, req)
	if err != nil {
		var providerErr *providers.ProviderError
		switch {
		case errors.Is(err, ranking.ErrUnknownPolicy):
			return errorJSON(c, http.StatusBadRequest, "validation_error", err.Error())
		case errors.As(err, &providerErr):
			h.logger.Warn().Err(err).Str("provider", providerErr.Provider).Msg("upstream search failed")
			return errorJSON(c, http.StatusBadGateway, "upstream_error", "Failed to fetch flight offers from the upstream provider")
		default:
			h.logger.Error().Err(err).Msg("search failed")
			return errorJSON(c, http.StatusInternalServerError, "search_error", "Failed to search flights")
		}
	}

	offers := make([]models.OfferResponse, 0, len(result.Offers))
	for _, o := range result.Offers {
		offers = append(offers, models.ToOfferResponse(o, currency.Format(o.ConvertedPrice, o.DisplayCurrency)))
	}

	return c.JSON(http.StatusOK, models.SearchResponse{
		SearchCriteria: models.BuildSearchCriteria(req),
		Metadata: models.SearchMetadata{
			Provider:      result.Provider,
			RawOffers:     result.RawOffers,
			SkippedOffers: len(result.Skipped),
			TotalResults:  len(offers),
			SearchTimeMs:  result.Elapsed.Milliseconds(),
			CacheHit:      result.CacheHit,
		},
		Offers: offers,
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func errorJSON(c echo.Context, code int, kind, message string) error {
	return c.JSON(code, models.ErrorResponse{
		Error:   kind,
		Message: message,
		Code:    code,
	})
}
