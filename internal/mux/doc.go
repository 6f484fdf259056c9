// Package mux assembles a book's audio files into a single chaptered
// container by generating ffmpeg invocations and running them under the
// process supervisor. An ordered list of strategies provides fallback when
// the primary command fails on awkward inputs.
package mux
