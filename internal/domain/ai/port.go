package ai

import "context"

// Client is the model completion port.
type Client interface {
	// Ready reports configuration problems (e.g. a missing credential) without
	// touching the network.
	Ready() error
	// Complete sends one prompt and returns the raw completion text.
	Complete(ctx context.Context, prompt string) (string, error)
}
