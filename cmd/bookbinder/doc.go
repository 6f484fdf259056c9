// Command bookbinder assembles directories of loose audio files into
// chaptered .m4b audiobooks and files them into a categorized library.
package main
