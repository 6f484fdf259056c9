// Package textutil provides string sanitization helpers shared across the
// conversion pipeline.
package textutil
