package payment

import (
	"context"
	"errors"
	"fmt"
)

// SandboxGateway issues deterministic redirect URLs without touching a real
// provider. FailWith, when set, makes every call fail with that message so
// error paths can be exercised.
type SandboxGateway struct {
	BaseURL  string
	FailWith string
	Calls    int
}

func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{BaseURL: "https://pay.sandbox.invalid"}
}

func (g *SandboxGateway) Name() string { return "sandbox" }

func (g *SandboxGateway) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, &GatewayError{Gateway: g.Name(), Err: err}
	}
	g.Calls++
	if g.FailWith != "" {
		return nil, &GatewayError{Gateway: g.Name(), Message: g.FailWith, Err: errors.New("sandbox failure")}
	}
	return &IntentResponse{
		ProviderRef: "sbx_" + req.BookingID,
		RedirectURL: fmt.Sprintf("%s/intent/%s", g.BaseURL, req.BookingID),
	}, nil
}
