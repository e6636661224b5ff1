package payment

import (
	"context"
	"errors"
	"math"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/dharmasatrya/flightbooking/internal/ratelimit"
)

var ErrStripeKeyMissing = errors.New("stripe secret key not configured")

// StripeGateway creates hosted Checkout sessions. The returned URL is where
// the traveler is redirected to complete payment; webhook confirmation is
// handled outside this service.
type StripeGateway struct {
	client     *client.API
	successURL string
	cancelURL  string
	limiter    *ratelimit.ServiceLimiter
}

func NewStripeGateway(secretKey, successURL, cancelURL string, limiter *ratelimit.ServiceLimiter) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, ErrStripeKeyMissing
	}
	return &StripeGateway{
		client:     client.New(secretKey, nil),
		successURL: successURL,
		cancelURL:  cancelURL,
		limiter:    limiter,
	}, nil
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResponse, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx, g.Name()); err != nil {
			return nil, &GatewayError{Gateway: g.Name(), Err: err}
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.BookingID),
		SuccessURL:        stripe.String(g.successURL),
		CancelURL:         stripe.String(g.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(toMinorUnits(req.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	if req.Billing.Email != "" {
		params.CustomerEmail = stripe.String(req.Billing.Email)
	}

	sess, err := g.client.CheckoutSessions.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return nil, &GatewayError{Gateway: g.Name(), Message: stripeErr.Msg, Err: err}
		}
		return nil, &GatewayError{Gateway: g.Name(), Err: err}
	}

	return &IntentResponse{
		ProviderRef: sess.ID,
		RedirectURL: sess.URL,
	}, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
