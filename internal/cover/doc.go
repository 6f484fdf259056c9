// Package cover locates existing cover art for a book directory and
// downloads lookup-provided art when nothing local exists.
package cover
