package chapters_test

import (
	"context"
	"errors"
	"testing"

	"bookbinder/internal/chapters"
	"bookbinder/internal/media/ffprobe"
	"bookbinder/internal/services"
)

func fixedDurations(durations map[string]string) ffprobe.Inspector {
	return func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		d, ok := durations[path]
		if !ok {
			return ffprobe.Result{}, errors.New("unprobeable")
		}
		return ffprobe.Result{Format: ffprobe.Format{Duration: d}}, nil
	}
}

func TestBuildContiguousOffsets(t *testing.T) {
	files := []string{"/books/a/01.mp3", "/books/a/02.mp3", "/books/a/03.mp3"}
	probe := fixedDurations(map[string]string{
		files[0]: "60.5",
		files[1]: "120.0",
		files[2]: "30.25",
	})

	plan, err := chapters.Build(context.Background(), probe, "ffprobe", files)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(plan.Chapters) != 3 {
		t.Fatalf("got %d chapters", len(plan.Chapters))
	}

	wantStarts := []int64{0, 60500, 180500}
	wantEnds := []int64{60500, 180500, 210750}
	for i, ch := range plan.Chapters {
		if ch.StartMillis != wantStarts[i] || ch.EndMillis != wantEnds[i] {
			t.Fatalf("chapter %d spans [%d, %d], want [%d, %d]",
				i, ch.StartMillis, ch.EndMillis, wantStarts[i], wantEnds[i])
		}
		if i > 0 && ch.StartMillis != plan.Chapters[i-1].EndMillis {
			t.Fatalf("chapter %d does not start where %d ends", i, i-1)
		}
	}
	if plan.TotalMillis != 210750 {
		t.Fatalf("total = %d", plan.TotalMillis)
	}
}

func TestBuildToleratesUnprobeableFile(t *testing.T) {
	files := []string{"/books/a/01.mp3", "/books/a/broken.mp3", "/books/a/03.mp3"}
	probe := fixedDurations(map[string]string{
		files[0]: "10",
		files[2]: "10",
	})

	plan, err := chapters.Build(context.Background(), probe, "ffprobe", files)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(plan.Chapters) != 3 {
		t.Fatalf("got %d chapters", len(plan.Chapters))
	}
	broken := plan.Chapters[1]
	if broken.StartMillis != broken.EndMillis {
		t.Fatalf("broken file should contribute zero length, got [%d, %d]", broken.StartMillis, broken.EndMillis)
	}
	if plan.Chapters[2].StartMillis != 10000 {
		t.Fatalf("third chapter starts at %d", plan.Chapters[2].StartMillis)
	}
}

func TestBuildEmptyInput(t *testing.T) {
	_, err := chapters.Build(context.Background(), nil, "ffprobe", nil)
	if !errors.Is(err, services.ErrNoAudioFiles) {
		t.Fatalf("err = %v", err)
	}
}

func TestTitleFor(t *testing.T) {
	cases := []struct {
		file     string
		position int
		want     string
	}{
		{"/b/01.mp3", 1, "Chapter 1"},
		{"/b/007.flac", 7, "Chapter 7"},
		{"/b/03 - the stand.mp3", 3, "The Stand"},
		{"/b/04_dark_tower.m4a", 4, "Dark Tower"},
		{"/b/epilogue.mp3", 12, "Epilogue"},
		{"/b/12.part one.ogg", 12, "Part One"},
	}
	for _, tc := range cases {
		if got := chapters.TitleFor(tc.file, tc.position); got != tc.want {
			t.Errorf("TitleFor(%q, %d) = %q, want %q", tc.file, tc.position, got, tc.want)
		}
	}
}
