// Package discover walks an input tree to find candidate book
// directories and guards against revisiting the same directory through
// multiple traversal paths.
package discover
