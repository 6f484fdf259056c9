// Package inventory enumerates the audio files that make up a candidate
// book directory.
package inventory
