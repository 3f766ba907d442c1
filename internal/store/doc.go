// Package store defines interfaces for persisting generation run state.
// These interfaces abstract the underlying storage mechanism from the
// application's core logic, allowing the stage pipeline to remain
// independent of specific database technologies. Run records track the
// lifecycle of asynchronous stage executions and never contain generated
// slide content.
package store
