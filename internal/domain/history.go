package domain

import "sort"

// RunEntry records one validation run for later diffing.
type RunEntry struct {
	ID         string    `json:"id"`
	Timestamp  string    `json:"timestamp"`
	CommitHash string    `json:"commit_hash,omitempty"`
	Target     string    `json:"target"`
	Files      []FileRun `json:"files"`
}

// FileRun is the per-file part of a RunEntry.
type FileRun struct {
	File     string   `json:"file"`
	Passed   bool     `json:"passed"`
	IssueIDs []string `json:"issue_ids"`
}

// FileDiff lists issue ids that appeared or disappeared between two runs.
type FileDiff struct {
	File     string   `json:"file"`
	New      []string `json:"new,omitempty"`
	Resolved []string `json:"resolved,omitempty"`
}

// NewRunEntry snapshots the issue ids of a set of results.
func NewRunEntry(id, timestamp, target string, results []Result) RunEntry {
	entry := RunEntry{ID: id, Timestamp: timestamp, Target: target}
	for _, r := range results {
		entry.Files = append(entry.Files, FileRun{
			File:     r.File,
			Passed:   r.Report.Passed(),
			IssueIDs: r.Report.IssueIDs(),
		})
	}
	return entry
}

// Passed reports whether every file in the run passed.
func (e RunEntry) Passed() bool {
	for _, f := range e.Files {
		if !f.Passed {
			return false
		}
	}
	return true
}

// IssueCount returns the total number of recorded issues.
func (e RunEntry) IssueCount() int {
	n := 0
	for _, f := range e.Files {
		n += len(f.IssueIDs)
	}
	return n
}

// LatestFor returns the most recent entry recorded for target, if any.
func LatestFor(entries []RunEntry, target string) (RunEntry, bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Target == target {
			return entries[i], true
		}
	}
	return RunEntry{}, false
}

// DiffRuns compares two runs file by file. Files only present in one run
// contribute all their ids as new or resolved. Unchanged files are omitted.
func DiffRuns(prev, curr RunEntry) []FileDiff {
	before := make(map[string][]string, len(prev.Files))
	for _, f := range prev.Files {
		before[f.File] = f.IssueIDs
	}
	after := make(map[string][]string, len(curr.Files))
	for _, f := range curr.Files {
		after[f.File] = f.IssueIDs
	}

	files := make([]string, 0, len(before)+len(after))
	for f := range before {
		files = append(files, f)
	}
	for f := range after {
		if _, ok := before[f]; !ok {
			files = append(files, f)
		}
	}
	sort.Strings(files)

	var diffs []FileDiff
	for _, f := range files {
		d := FileDiff{
			File:     f,
			New:      missingFrom(after[f], before[f]),
			Resolved: missingFrom(before[f], after[f]),
		}
		if len(d.New) > 0 || len(d.Resolved) > 0 {
			diffs = append(diffs, d)
		}
	}
	return diffs
}

// missingFrom returns ids in a that are not in b, preserving a's order.
func missingFrom(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, id := range b {
		set[id] = true
	}
	var out []string
	for _, id := range a {
		if !set[id] {
			out = append(out, id)
			set[id] = true
		}
	}
	return out
}
