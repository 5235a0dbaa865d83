package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// EventDedupTTL is how long consumed event keys are held in the fast-path
	// dedup store.
	EventDedupTTL = 24 * time.Hour

	// DefaultListLimit caps listings when the caller does not set one.
	DefaultListLimit = 50

	// ChartListLimit bounds whole-chart reads such as the account tree.
	ChartListLimit = 1000
)
