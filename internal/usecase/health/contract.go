package health

import "context"

// Checker checks an upstream dependency.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// Pinger checks store availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Capability reports whether embeddings are currently enabled.
type Capability interface {
	Available() bool
}
