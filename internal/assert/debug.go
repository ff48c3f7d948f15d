//go:build debug

package assert

const panicOnFailure = true
