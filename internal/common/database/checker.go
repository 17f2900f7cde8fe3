// internal/common/database/checker.go
package database

import "context"

// Checker is a dependency the readiness probe pings.
type Checker interface {
	Name() string
	Ping(ctx context.Context) error
}

// CheckAll pings every checker and returns the failures keyed by name.
func CheckAll(ctx context.Context, checkers ...Checker) map[string]string {
	failures := make(map[string]string)
	for _, c := range checkers {
		if err := c.Ping(ctx); err != nil {
			failures[c.Name()] = err.Error()
		}
	}
	return failures
}
