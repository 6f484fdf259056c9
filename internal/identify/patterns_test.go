package identify

import "testing"

func TestMatchFilenameShapes(t *testing.T) {
	cases := []struct {
		file    string
		pattern string
		want    Partial
	}{
		{
			file:    "Isaac Asimov - Foundation - 1951.mp3",
			pattern: "author-title-year",
			want:    Partial{Author: "Isaac Asimov", Title: "Foundation", Year: "1951"},
		},
		{
			file:    "Isaac Asimov - Foundation 2 - Foundation and Empire.mp3",
			pattern: "author-series#-title",
			want:    Partial{Author: "Isaac Asimov", Series: "Foundation", SeriesPart: "2", Title: "Foundation and Empire"},
		},
		{
			file:    "Frank Herbert - Dune - Book 3 - Children of Dune.m4a",
			pattern: "author-series-book-n-title",
			want:    Partial{Author: "Frank Herbert", Series: "Dune", SeriesPart: "3", Title: "Children of Dune"},
		},
		{
			file:    "Foundation - Isaac Asimov - read by Scott Brick.mp3",
			pattern: "title-author-narrator",
			want:    Partial{Title: "Foundation", Author: "Isaac Asimov", Narrator: "Scott Brick"},
		},
		{
			file:    "Foundation - 1951 - Isaac Asimov.flac",
			pattern: "title-year-author",
			want:    Partial{Title: "Foundation", Year: "1951", Author: "Isaac Asimov"},
		},
		{
			file:    "Frank_Herbert_Dune_Book_2_Dune_Messiah.mp3",
			pattern: "author-series-book-n-title-underscored",
			want:    Partial{Author: "Frank Herbert", Series: "Dune", SeriesPart: "2", Title: "Dune Messiah"},
		},
		{
			file:    "51 - Battlefield Earth - L Ron Hubbard - 1982.mp3",
			pattern: "numbered-collection",
			want:    Partial{SeriesPart: "51", Title: "Battlefield Earth", Author: "L Ron Hubbard", Year: "1982"},
		},
		{
			file:    "07 - The Stars My Destination - Alfred Bester.ogg",
			pattern: "numbered-collection",
			want:    Partial{SeriesPart: "07", Title: "The Stars My Destination", Author: "Alfred Bester"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.file, func(t *testing.T) {
			got, pattern, ok := MatchFilename(tc.file)
			if !ok {
				t.Fatalf("no pattern matched %q", tc.file)
			}
			if pattern != tc.pattern {
				t.Fatalf("pattern = %s, want %s", pattern, tc.pattern)
			}
			if got != tc.want {
				t.Fatalf("partial = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestMatchFilenameNoMatch(t *testing.T) {
	for _, file := range []string{"track01.mp3", "audiobook.mp3", ".mp3"} {
		if _, pattern, ok := MatchFilename(file); ok {
			t.Errorf("%q unexpectedly matched %s", file, pattern)
		}
	}
}
