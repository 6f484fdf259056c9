// Package library maps resolved book identities onto the library
// taxonomy and relocates finished artifacts into it.
package library
