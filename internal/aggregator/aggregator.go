package aggregator

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/internal/providers"
	"github.com/dharmasatrya/flightbooking/internal/ratelimit"
)

type Config struct {
	Timeout     time.Duration
	MaxRetries  int
	RetryDelays []time.Duration
	RateLimiter *ratelimit.ServiceLimiter
	// Fallback is the synthetic provider consulted when every remote
	// provider fails or the merged result set is empty. Nil (or
	// DisableFallback) turns the fallback off, which production deployments
	// should do unless fabricated offers are acceptable.
	Fallback        providers.Provider
	DisableFallback bool
}

type Aggregator struct {
	providers []providers.Provider
	config    Config
}

type Result struct {
	Flights            []models.Offer
	ProvidersQueried   int
	ProvidersSucceeded int
	ProvidersFailed    int
	FailedProviders    []string
	FallbackUsed       bool
}

func NewAggregator(providerList []providers.Provider, config Config) *Aggregator {
	return &Aggregator{
		providers: providerList,
		config:    config,
	}
}

func (a *Aggregator) Search(ctx context.Context, req models.SearchRequest) (*Result, error) {
	searchCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	result := &Result{
		Flights:          make([]models.Offer, 0),
		ProvidersQueried: len(a.providers),
	}

	type providerResult struct {
		provider string
		offers   []models.Offer
		err      error
	}

	resultCh := make(chan providerResult, len(a.providers))
	var wg sync.WaitGroup

	for _, p := range a.providers {
		wg.Add(1)
		go func(provider providers.Provider) {
			defer wg.Done()

			if a.config.RateLimiter != nil {
				if err := a.config.RateLimiter.Wait(searchCtx, provider.Name()); err != nil {
					resultCh <- providerResult{
						provider: provider.Name(),
						err:      err,
					}
					return
				}
			}

			offers, err := a.searchWithRetry(searchCtx, provider, req)
			resultCh <- providerResult{
				provider: provider.Name(),
				offers:   offers,
				err:      err,
			}
		}(p)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for pr := range resultCh {
		if pr.err != nil {
			log.Printf("Provider %s failed: %v", pr.provider, pr.err)
			result.ProvidersFailed++
			result.FailedProviders = append(result.FailedProviders, pr.provider)
		} else {
			result.ProvidersSucceeded++
			result.Flights = append(result.Flights, pr.offers...)
		}
	}

	if len(result.Flights) == 0 {
		a.applyFallback(ctx, req, result)
	}

	return result, nil
}

// applyFallback fills an empty result from the synthetic provider so the UI
// stays exercised. FallbackUsed marks the result so callers and tests can
// tell the paths apart.
func (a *Aggregator) applyFallback(ctx context.Context, req models.SearchRequest, result *Result) {
	if a.config.DisableFallback || a.config.Fallback == nil {
		return
	}

	offers, err := a.config.Fallback.Search(ctx, req)
	if err != nil {
		log.Printf("Fallback provider %s failed: %v", a.config.Fallback.Name(), err)
		return
	}
	result.Flights = offers
	result.FallbackUsed = true
}

func (a *Aggregator) searchWithRetry(ctx context.Context, provider providers.Provider, req models.SearchRequest) ([]models.Offer, error) {
	var lastErr error

	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if attempt > 0 {
			delayIdx := attempt - 1
			if delayIdx >= len(a.config.RetryDelays) {
				delayIdx = len(a.config.RetryDelays) - 1
			}
			delay := a.config.RetryDelays[delayIdx]

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		offers, err := provider.Search(ctx, req)
		if err == nil {
			return offers, nil
		}

		lastErr = err
		log.Printf("Provider %s attempt %d failed: %v", provider.Name(), attempt+1, err)
	}

	return nil, lastErr
}

func (a *Aggregator) SearchRoundTrip(ctx context.Context, req models.SearchRequest) (*Result, *Result, error) {
	if req.ReturnDate == nil || *req.ReturnDate == "" {
		outbound, err := a.Search(ctx, req)
		return outbound, nil, err
	}

	searchCtx, cancel := context.WithTimeout(ctx, a.config.Timeout*2)
	defer cancel()

	type searchResult struct {
		result   *Result
		err      error
		isReturn bool
	}

	resultCh := make(chan searchResult, 2)

	go func() {
		result, err := a.Search(searchCtx, req)
		resultCh <- searchResult{result: result, err: err, isReturn: false}
	}()

	go func() {
		returnReq := models.SearchRequest{
			Origin:        req.Destination,
			Destination:   req.Origin,
			DepartureDate: *req.ReturnDate,
			Passengers:    req.Passengers,
			CabinClass:    req.CabinClass,
			Filters:       req.Filters,
			SortBy:        req.SortBy,
		}
		result, err := a.Search(searchCtx, returnReq)
		resultCh <- searchResult{result: result, err: err, isReturn: true}
	}()

	var outbound, returnResult *Result
	var outboundErr, returnErr error

	for i := 0; i < 2; i++ {
		sr := <-resultCh
		if sr.isReturn {
			returnResult = sr.result
			returnErr = sr.err
		} else {
			outbound = sr.result
			outboundErr = sr.err
		}
	}

	if outboundErr != nil {
		return nil, nil, outboundErr
	}

	if returnErr != nil {
		log.Printf("Return flight search failed: %v", returnErr)
		return outbound, nil, nil
	}

	return outbound, returnResult, nil
}
