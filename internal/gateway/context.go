package gateway

import (
	"context"

	"github.com/ingenzi/console-gateway/internal/models"
)

type contextKey string

const callerKey contextKey = "gateway_caller"

// Caller binds the hydrated principal to the session it came from so that an
// auth-expiry signal can clear the right session.
type Caller struct {
	SessionID string
	Principal *models.Principal
}

// WithCaller attaches the authenticated caller to the context.
func WithCaller(ctx context.Context, sessionID string, principal *models.Principal) context.Context {
	return context.WithValue(ctx, callerKey, &Caller{SessionID: sessionID, Principal: principal})
}

// CallerFrom extracts the caller, nil when the request is anonymous.
func CallerFrom(ctx context.Context) *Caller {
	if caller, ok := ctx.Value(callerKey).(*Caller); ok {
		return caller
	}
	return nil
}
