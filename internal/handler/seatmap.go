package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightbooking/internal/seatmap"
)

// SeatMapHandler serves seat inventory previews outside of any booking
// session, e.g. while the traveler is still comparing offers.
type SeatMapHandler struct {
	inventory seatmap.Inventory
	basePrice float64
	currency  string
}

func NewSeatMapHandler(inventory seatmap.Inventory, basePrice float64, currency string) *SeatMapHandler {
	return &SeatMapHandler{
		inventory: inventory,
		basePrice: basePrice,
		currency:  currency,
	}
}

func (h *SeatMapHandler) Get(c echo.Context) error {
	flightID := c.Param("id")
	legIndex, _ := strconv.Atoi(c.QueryParam("leg"))

	seatMap, err := h.inventory.SeatMap(c.Request().Context(), flightID, legIndex, h.basePrice, h.currency)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, seatMap)
}
