package generation

import "context"

// Client defines the interface for generating slide content from a routed
// request. This interface serves as the boundary between the stage core and
// external generation backends, following the hexagonal architecture pattern.
//
// Implementations own their transport concerns (timeouts, bounded retries,
// error translation into this package's sentinel errors) and keep no state
// between calls. The context carries the per-call deadline; implementations
// must respect cancellation.
type Client interface {
	// Generate produces slide content for the routed request. On success the
	// returned response still requires validation by the caller; on failure
	// the error wraps one of the package sentinels so it can be categorized
	// into a slide outcome.
	Generate(ctx context.Context, req RoutedRequest) (*GenerationResponse, error)
}
