// Package delivery defines the entry points that drive the application.
package delivery

import "context"

// Delivery is a long-running entry point started by the fx app, such as the
// HTTP API or a background scheduler.
type Delivery interface {
	Serve(ctx context.Context) error
}
