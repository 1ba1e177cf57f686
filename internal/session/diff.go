package session

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffLine is one run of lines in a buffer diff.
type DiffLine struct {
	Op   string `json:"op"` // "equal", "insert" or "delete"
	Text string `json:"text"`
}

// BufferDiff compares the pretty-printed current value with the edit buffer.
type BufferDiff struct {
	Changed bool       `json:"changed"`
	Lines   []DiffLine `json:"lines"`
	Patch   string     `json:"patch"`
}

func diffText(from, to string) BufferDiff {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	out := BufferDiff{Lines: make([]DiffLine, 0, len(diffs))}
	for _, d := range diffs {
		var op string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = "insert"
			out.Changed = true
		case diffmatchpatch.DiffDelete:
			op = "delete"
			out.Changed = true
		default:
			op = "equal"
		}
		out.Lines = append(out.Lines, DiffLine{Op: op, Text: strings.TrimSuffix(d.Text, "\n")})
	}
	if out.Changed {
		out.Patch = dmp.PatchToText(dmp.PatchMake(from, to))
	}
	return out
}
