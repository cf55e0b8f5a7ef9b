//go:build !debug

package weather

const strictIndexChecks = false
