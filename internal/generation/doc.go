// Package generation implements the content-generation stage for presentation
// outlines. It validates slide descriptors, transforms them into the
// generation service's request shapes, routes each request to a versioned
// endpoint, invokes a generation client, and aggregates per-slide outcomes
// into a presentation-level result.
//
// The Client interface is the boundary to external generation backends
// (the dedicated slide service, Gemini, OpenAI); the stage itself is
// backend-agnostic. One failing slide never aborts a run: every failure is
// caught at the per-slide boundary and recorded as an outcome.
package generation
