// Package main provides a command for compiling a trained feed-forward
// network into standalone fixed-point (Q12) inference code, for execution
// on targets without floating point or a graph runtime.
package main
