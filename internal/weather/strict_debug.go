//go:build debug

package weather

// Debug builds panic on stale city indices so the caller bug surfaces immediately.
const strictIndexChecks = true
