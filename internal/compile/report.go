package compile

import (
	"sort"
	"sync"
	"time"

	"albumus/internal/faults"
	"albumus/internal/media"
)

// Job stages recorded on results.
const (
	StageDecide = "decide"
	StageEncode = "encode"
	StageTag    = "tag"
	StageDone   = "done"
)

// JobResult is the outcome of one track-format pair.
type JobResult struct {
	Artist   string
	Album    string
	Track    string
	Format   media.Format
	Output   string
	Decision string
	Status   string
	Stage    string
	ExitCode int
	Error    string
	Duration time.Duration
}

// Skip records a track or album that produced no jobs.
type Skip struct {
	Artist string
	Album  string
	Track  string
	Reason string
}

// Report summarizes a compile run.
type Report struct {
	RunID       string
	InputRoot   string
	OutputRoot  string
	Formats     []media.Format
	StartedAt   time.Time
	FinishedAt  time.Time
	Interrupted bool
	Jobs        []JobResult
	Skipped     []Skip
	Art         []string

	mu sync.Mutex
}

func (r *Report) addJob(result JobResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Jobs = append(r.Jobs, result)
}

func (r *Report) addSkip(skip Skip) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Skipped = append(r.Skipped, skip)
}

func (r *Report) addArt(paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Art = append(r.Art, paths...)
}

func (r *Report) markInterrupted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Interrupted = true
}

// finish sorts results so output is stable regardless of worker scheduling.
func (r *Report) finish(at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FinishedAt = at
	order := make(map[media.Format]int, len(r.Formats))
	for i, f := range r.Formats {
		order[f] = i
	}
	sort.SliceStable(r.Jobs, func(i, j int) bool {
		a, b := r.Jobs[i], r.Jobs[j]
		if a.Artist != b.Artist {
			return a.Artist < b.Artist
		}
		if a.Album != b.Album {
			return a.Album < b.Album
		}
		if a.Track != b.Track {
			return a.Track < b.Track
		}
		return order[a.Format] < order[b.Format]
	})
	sort.Strings(r.Art)
}

// Succeeded counts jobs that finished with status ok.
func (r *Report) Succeeded() int {
	n := 0
	for _, job := range r.Jobs {
		if job.Status == faults.StatusOK {
			n++
		}
	}
	return n
}

// Failed counts jobs with any other status.
func (r *Report) Failed() int {
	return len(r.Jobs) - r.Succeeded()
}

// HasFailures reports whether any job failed or the run was interrupted.
func (r *Report) HasFailures() bool {
	return r.Interrupted || r.Failed() > 0
}
