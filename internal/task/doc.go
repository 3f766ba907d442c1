// Package task manages background job queuing, processing, and lifecycle.
// It provides asynchronous execution of generation runs so long slide
// generation does not block HTTP request handling, and marks runs that
// were interrupted by a restart as failed on startup.
package task
