// Package types defines the interfaces shared between the composition
// engine and its filesystem implementations.
package types
