package mux

import (
	"fmt"
	"strings"
)

// Strategy builds one ffmpeg argument list for a job. Strategies are tried
// in order; a retryable failure falls through to the next one.
type Strategy interface {
	Name() string
	Args(job Job, listPath, metaPath string) []string
}

// strategies returns the fallback chain: the full chaptered mux with cover
// art, the same without the cover, then a decode-and-concat graph that
// re-encodes every input and survives containers the concat demuxer
// rejects.
func strategies() []Strategy {
	return []Strategy{
		chapteredStrategy{withCover: true},
		chapteredStrategy{withCover: false},
		filterConcatStrategy{},
	}
}

type chapteredStrategy struct {
	withCover bool
}

func (s chapteredStrategy) Name() string {
	if s.withCover {
		return "chaptered"
	}
	return "chaptered-no-cover"
}

func (s chapteredStrategy) Args(job Job, listPath, metaPath string) []string {
	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-f", "concat", "-safe", "0", "-i", listPath,
		"-i", metaPath,
	}
	cover := s.withCover && job.CoverPath != ""
	if cover {
		args = append(args, "-i", job.CoverPath)
	}
	args = append(args, "-map_metadata", "1", "-map", "0:a")
	if cover {
		args = append(args,
			"-map", "2:v",
			"-c:v", "copy",
			"-disposition:v:0", "attached_pic",
		)
	}
	args = append(args,
		"-c:a", "aac",
		"-b:a", job.Bitrate,
		"-movflags", "+faststart",
		"-f", "mp4",
		job.OutputPath,
	)
	return args
}

type filterConcatStrategy struct{}

func (filterConcatStrategy) Name() string { return "filter-concat" }

func (filterConcatStrategy) Args(job Job, listPath, metaPath string) []string {
	args := []string{"-hide_banner", "-nostdin", "-y", "-err_detect", "ignore_err"}
	for _, file := range job.Files {
		args = append(args, "-i", file)
	}
	args = append(args, "-i", metaPath)

	var graph strings.Builder
	for i := range job.Files {
		fmt.Fprintf(&graph, "[%d:a]", i)
	}
	fmt.Fprintf(&graph, "concat=n=%d:v=0:a=1[book]", len(job.Files))

	args = append(args,
		"-filter_complex", graph.String(),
		"-map", "[book]",
		"-map_metadata", fmt.Sprintf("%d", len(job.Files)),
		"-c:a", "aac",
		"-b:a", job.Bitrate,
		"-movflags", "+faststart",
		"-f", "mp4",
		job.OutputPath,
	)
	return args
}
