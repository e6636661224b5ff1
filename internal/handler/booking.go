package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightbooking/internal/booking"
	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/internal/payment"
	"github.com/dharmasatrya/flightbooking/internal/seatmap"
)

type BookingHandler struct {
	manager *booking.Manager
}

func NewBookingHandler(manager *booking.Manager) *BookingHandler {
	return &BookingHandler{manager: manager}
}

func (h *BookingHandler) Create(c echo.Context) error {
	var req models.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid_request", "Failed to parse request body: "+err.Error())
	}

	snapshot, err := h.manager.Create(req)
	if err != nil {
		var verr models.ValidationError
		if errors.As(err, &verr) {
			return badRequest(c, "validation_error", err.Error())
		}
		return internalError(c, err)
	}

	return c.JSON(http.StatusCreated, snapshot)
}

func (h *BookingHandler) Get(c echo.Context) error {
	snapshot, err := h.manager.Get(c.Param("id"))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (h *BookingHandler) Extend(c echo.Context) error {
	snapshot, err := h.manager.Extend(c.Param("id"))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (h *BookingHandler) Cancel(c echo.Context) error {
	snapshot, err := h.manager.Cancel(c.Param("id"))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (h *BookingHandler) SeatMap(c echo.Context) error {
	flightID := c.QueryParam("flight_id")
	if flightID == "" {
		return badRequest(c, "validation_error", "flight_id is required")
	}
	legIndex, _ := strconv.Atoi(c.QueryParam("leg"))

	seatMap, err := h.manager.SeatMap(c.Request().Context(), c.Param("id"), flightID, legIndex)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, seatMap)
}

func (h *BookingHandler) ToggleSeat(c echo.Context) error {
	var req models.SeatToggleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid_request", "Failed to parse request body: "+err.Error())
	}
	if req.FlightID == "" || req.SeatID == "" {
		return badRequest(c, "validation_error", "flight_id and seat_id are required")
	}

	state, err := h.manager.ToggleSeat(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

func (h *BookingHandler) ClearSeats(c echo.Context) error {
	flightID := c.QueryParam("flight_id")
	if flightID == "" {
		return badRequest(c, "validation_error", "flight_id is required")
	}
	legIndex, _ := strconv.Atoi(c.QueryParam("leg"))

	state, err := h.manager.ClearSeats(c.Request().Context(), c.Param("id"), flightID, legIndex)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

func (h *BookingHandler) ConfirmSeats(c echo.Context) error {
	var req models.SeatToggleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid_request", "Failed to parse request body: "+err.Error())
	}
	if req.FlightID == "" {
		return badRequest(c, "validation_error", "flight_id is required")
	}

	snapshot, err := h.manager.ConfirmSeats(c.Request().Context(), c.Param("id"), req.FlightID, req.LegIndex)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (h *BookingHandler) SubmitPayment(c echo.Context) error {
	var req models.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid_request", "Failed to parse request body: "+err.Error())
	}

	resp, err := h.manager.SubmitPayment(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		var ge *payment.GatewayError
		if errors.As(err, &ge) {
			// Provider failure: the session stays pending and no remaining
			// time is consumed. The traveler can retry.
			return c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "payment_failed",
				Message: payment.UserMessage(err),
				Code:    http.StatusBadGateway,
			})
		}
		return bookingError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// ConfirmPayment is the out-of-band hook the payment provider calls once the
// money actually moved.
func (h *BookingHandler) ConfirmPayment(c echo.Context) error {
	snapshot, err := h.manager.MarkPaid(c.Param("id"))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
			Code:    http.StatusNotFound,
		})
	case errors.Is(err, booking.ErrDeadlinePassed):
		return c.JSON(http.StatusGone, models.ErrorResponse{
			Error:   "session_expired",
			Message: err.Error(),
			Code:    http.StatusGone,
		})
	case errors.Is(err, booking.ErrNotPending),
		errors.Is(err, booking.ErrExtendNotAllowed),
		errors.Is(err, booking.ErrAlreadyClosed),
		errors.Is(err, booking.ErrSessionClosed):
		return c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "invalid_state",
			Message: err.Error(),
			Code:    http.StatusConflict,
		})
	case errors.Is(err, booking.ErrFlightNotInSession),
		errors.Is(err, seatmap.ErrEmptySelection):
		return badRequest(c, "validation_error", err.Error())
	default:
		return internalError(c, err)
	}
}

func badRequest(c echo.Context, code, msg string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   code,
		Message: msg,
		Code:    http.StatusBadRequest,
	})
}

func internalError(c echo.Context, err error) error {
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: err.Error(),
		Code:    http.StatusInternalServerError,
	})
}
