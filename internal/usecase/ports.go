package usecase

import "context"

// TransitionGuard sheds duplicate non-idempotent transition requests
// (double-clicked accept/reject/sign) before they reach the state
// machine. The store's compare-and-set remains the correctness backstop.
type TransitionGuard interface {
	Acquire(ctx context.Context, action, entityID string) bool
}

// ViewerSessionStore maps anonymous session tokens to stable viewer
// identities so unique-view counts stay honest for viewers without
// accounts.
type ViewerSessionStore interface {
	Resolve(ctx context.Context, token string) (string, error)
}
