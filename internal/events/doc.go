// Package events provides types and interfaces for decoupling request
// handling from background work.
//
// Services emit events describing work they want done without knowing
// which handlers will process them. This keeps the HTTP layer free of
// direct dependencies on the task runner and avoids circular imports
// between the service and task packages.
//
// The primary components are:
// - StageRequestedEvent: a request to run the generation stage in the background
// - EventHandler: interface for components that can handle events
// - EventEmitter: interface for components that can emit events
package events
