// Package chapters plans the chapter list for an assembled audiobook from
// the ordered input files and their probed durations.
package chapters
