// Package openlibrary provides the online metadata lookup used to enrich
// book identities.
//
// The service is treated as slow, unreliable, and optional: a miss returns
// a nil record, never an error the pipeline acts on.
package openlibrary
