// Package services defines the error taxonomy and context plumbing shared
// by the conversion pipeline stages.
package services
