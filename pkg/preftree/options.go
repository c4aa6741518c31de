package preftree

import "time"

// Defaults used when Options fields are left zero.
const (
	DefaultBatchSize       = 50
	DefaultRevealThreshold = 4
	DefaultDebounce        = 500 * time.Millisecond
)

// Options configures a Controller.
type Options struct {
	// BatchSize is the page size requested from the backend. Consecutive
	// pages overlap by one node so placement can continue from the last
	// node of the previous page.
	BatchSize int
	// RevealThreshold is the largest hidden run revealed automatically.
	RevealThreshold int
	// CollapsedTypes lists node types that stay collapsed when they match.
	CollapsedTypes []string
	// Notify surfaces user-facing errors. It may be nil.
	Notify func(title, msg string)
	// Now is the clock used for Stats. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		BatchSize:       DefaultBatchSize,
		RevealThreshold: DefaultRevealThreshold,
		CollapsedTypes:  []string{"assignment"},
	}
}

func (o Options) withDefaults() Options {
	if o.BatchSize < 2 {
		o.BatchSize = DefaultBatchSize
	}
	if o.RevealThreshold <= 0 {
		o.RevealThreshold = DefaultRevealThreshold
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
