package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightbooking/internal/aggregator"
	"github.com/dharmasatrya/flightbooking/internal/cache"
	"github.com/dharmasatrya/flightbooking/internal/filter"
	"github.com/dharmasatrya/flightbooking/internal/models"
)

const defaultPageSize = 10

type SearchHandler struct {
	aggregator *aggregator.Aggregator
	cache      cache.Cache
}

func NewSearchHandler(agg *aggregator.Aggregator, c cache.Cache) *SearchHandler {
	return &SearchHandler{
		aggregator: agg,
		cache:      c,
	}
}

func (h *SearchHandler) Search(c echo.Context) error {
	startTime := time.Now()
	ctx := c.Request().Context()

	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	if offers, found := h.cache.Get(ctx, req); found {
		return h.respond(c, req, offers, aggregator.Result{
			ProvidersQueried:   0,
			ProvidersSucceeded: 0,
		}, startTime, true)
	}

	if req.ReturnDate != nil && *req.ReturnDate != "" {
		return h.handleRoundTrip(c, req, startTime)
	}

	result, err := h.aggregator.Search(ctx, req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "search_error",
			Message: "Failed to search flights: " + err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}

	// Fallback offers are fabricated; caching them would hide upstream
	// recovery for the whole TTL.
	if !result.FallbackUsed {
		_ = h.cache.Set(ctx, req, result.Flights)
	}

	return h.respond(c, req, result.Flights, *result, startTime, false)
}

// respond runs the facet/sort/pagination pipeline over a raw offer set and
// writes the search response.
func (h *SearchHandler) respond(c echo.Context, req models.SearchRequest, offers []models.Offer, result aggregator.Result, startTime time.Time, cacheHit bool) error {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	view := filter.NewView(offers, pageSize)
	view.UpdateCriteria(filter.UpdateFromRequest(req.Filters))
	view.SetSortKey(filter.ParseSortKey(req.SortBy))
	view.SetPage(req.Page)

	page, pagination := view.Page()
	priceMin, priceMax := view.FullPriceRange()

	return c.JSON(http.StatusOK, models.SearchResponse{
		SearchCriteria: buildSearchCriteria(req),
		Metadata: models.SearchMetadata{
			TotalResults:       pagination.Total,
			ProvidersQueried:   result.ProvidersQueried,
			ProvidersSucceeded: result.ProvidersSucceeded,
			ProvidersFailed:    result.ProvidersFailed,
			FailedProviders:    result.FailedProviders,
			FallbackUsed:       result.FallbackUsed,
			SearchTimeMs:       time.Since(startTime).Milliseconds(),
			CacheHit:           cacheHit,
		},
		Facets: models.Facets{
			Airlines:      view.UniqueAirlines(),
			PriceRangeMin: priceMin,
			PriceRangeMax: priceMax,
		},
		Pagination: pagination,
		Flights:    page,
	})
}

func (h *SearchHandler) handleRoundTrip(c echo.Context, req models.SearchRequest, startTime time.Time) error {
	ctx := c.Request().Context()

	outbound, returnResult, err := h.aggregator.SearchRoundTrip(ctx, req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "search_error",
			Message: "Failed to search flights: " + err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}

	criteria := filter.DefaultCriteria(outbound.Flights)
	criteria.Merge(filter.UpdateFromRequest(req.Filters))
	sortKey := filter.ParseSortKey(req.SortBy)
	outboundFiltered := filter.Apply(outbound.Flights, criteria, sortKey)

	var returnFiltered []models.Offer
	var returnMeta *aggregator.Result
	if returnResult != nil {
		returnCriteria := filter.DefaultCriteria(returnResult.Flights)
		returnCriteria.Merge(filter.UpdateFromRequest(req.Filters))
		returnFiltered = filter.Apply(returnResult.Flights, returnCriteria, sortKey)
		returnMeta = returnResult
	}

	totalQueried := outbound.ProvidersQueried
	totalSucceeded := outbound.ProvidersSucceeded
	totalFailed := outbound.ProvidersFailed
	failedProviders := outbound.FailedProviders
	fallbackUsed := outbound.FallbackUsed

	if returnMeta != nil {
		totalQueried += returnMeta.ProvidersQueried
		totalSucceeded += returnMeta.ProvidersSucceeded
		totalFailed += returnMeta.ProvidersFailed
		failedProviders = append(failedProviders, returnMeta.FailedProviders...)
		fallbackUsed = fallbackUsed || returnMeta.FallbackUsed
	}

	failedProviders = uniqueStrings(failedProviders)

	return c.JSON(http.StatusOK, models.RoundTripResponse{
		SearchCriteria: buildSearchCriteria(req),
		Metadata: models.SearchMetadata{
			TotalResults:       len(outboundFiltered) + len(returnFiltered),
			ProvidersQueried:   totalQueried,
			ProvidersSucceeded: totalSucceeded,
			ProvidersFailed:    totalFailed,
			FailedProviders:    failedProviders,
			FallbackUsed:       fallbackUsed,
			SearchTimeMs:       time.Since(startTime).Milliseconds(),
			CacheHit:           false,
		},
		OutboundFlights: outboundFiltered,
		ReturnFlights:   returnFiltered,
	})
}

func buildSearchCriteria(req models.SearchRequest) models.SearchCriteria {
	return models.SearchCriteria{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		Passengers:    req.Passengers,
		CabinClass:    req.CabinClass,
		Filters:       req.Filters,
		SortBy:        req.SortBy,
	}
}

func uniqueStrings(s []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(s))
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
