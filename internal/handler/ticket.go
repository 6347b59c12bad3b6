package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightoffers/internal/models"
	"github.com/dharmasatrya/flightoffers/internal/ticket"
)

type TicketHandler struct {
	generator *ticket.Generator
}

func NewTicketHandler(generator *ticket.Generator) *TicketHandler {
	return &TicketHandler{generator: generator}
}

type ticketRequest struct {
	Offer         models.OfferResponse `json:"offer"`
	PassengerName string               `json:"passenger_name"`
}

// Create issues a demo ticket for an offer previously returned by search.
func (h *TicketHandler) Create(c echo.Context) error {
	var req ticketRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid_request", "Failed to parse request body: "+err.Error())
	}
	if req.Offer.ID == "" {
		return errorJSON(c, http.StatusBadRequest, "validation_error", "offer is required")
	}

	offer, err := models.FromOfferResponse(req.Offer)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "validation_error", "offer price is invalid: "+err.Error())
	}

	tk, err := h.generator.Generate(offer, req.PassengerName)
	if err != nil {
		if errors.Is(err, ticket.ErrMissingPassenger) {
			return errorJSON(c, http.StatusBadRequest, "validation_error", err.Error())
		}
		return errorJSON(c, http.StatusInternalServerError, "ticket_error", err.Error())
	}

	return c.JSON(http.StatusCreated, tk)
}
