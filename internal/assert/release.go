//go:build !debug

package assert

const panicOnFailure = false
