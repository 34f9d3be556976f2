package ports

import "context"

// RateGate enforces a minimum interval between accepted generation requests
// across all users. Allow records the acceptance atomically; a rejected call
// leaves the gate untouched.
type RateGate interface {
	Allow(ctx context.Context) (bool, error)
}
