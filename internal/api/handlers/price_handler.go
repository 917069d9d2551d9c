package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"cartshare/internal/domain"
	"cartshare/internal/services"
	"cartshare/pkg/logger"
)

type PriceHandler struct {
	priceService *services.PriceService
	distance     domain.DistanceProvider
	log          logger.Logger
}

type ComparePricesRequest struct {
	City     string   `json:"city"`
	Barcodes []string `json:"barcodes"`
	Origin   string   `json:"origin,omitempty"`
}

type ComparePricesResponse struct {
	City    string               `json:"city"`
	Results []domain.PriceResult `json:"results"`
}

func NewPriceHandler(priceService *services.PriceService, distance domain.DistanceProvider,
	log logger.Logger) *PriceHandler {
	return &PriceHandler{
		priceService: priceService,
		distance:     distance,
		log:          log,
	}
}

func (h *PriceHandler) ComparePrices(c echo.Context) error {
	var req ComparePricesRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if req.City == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "City is required"})
	}
	if len(req.Barcodes) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "At least one barcode is required"})
	}

	results, err := h.priceService.GetPrices(c.Request().Context(), req.City, req.Barcodes, req.Origin)
	if err != nil {
		if domain.IsUpstreamError(err) {
			h.log.Error("Upstream lookup failed", "city", req.City, "error", err)
			return c.JSON(http.StatusBadGateway, map[string]string{"error": "Price lookup unavailable"})
		}
		h.log.Error("Failed to compare prices", "city", req.City, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compare prices"})
	}

	return c.JSON(http.StatusOK, ComparePricesResponse{City: req.City, Results: results})
}

func (h *PriceHandler) GetDistance(c echo.Context) error {
	from := c.QueryParam("from")
	to := c.QueryParam("to")
	if from == "" || to == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Both from and to are required"})
	}

	km, err := h.distance.Distance(c.Request().Context(), from, to)
	if err != nil {
		if domain.IsUpstreamError(err) {
			h.log.Error("Distance lookup failed", "from", from, "to", to, "error", err)
			return c.JSON(http.StatusBadGateway, map[string]string{"error": "Distance lookup unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to resolve distance"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"from":        from,
		"to":          to,
		"distance_km": km,
	})
}
