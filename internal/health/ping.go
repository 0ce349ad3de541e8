// Package health holds the liveness contract shared by the event
// stores and the server's startup gate.
package health

import "context"

// HealthPinger is implemented by stores that can verify their own
// liveness, e.g. the sqlite adapter pinging its database handle.
// HealthPing returns nil when the component can serve requests.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
