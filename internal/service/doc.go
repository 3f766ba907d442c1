// Package service implements the application's use cases, coordinating
// between the HTTP layer, the generation stage, and run persistence. It
// owns run lifecycle transitions and keeps recently completed results
// available for the deck and preview endpoints.
package service
