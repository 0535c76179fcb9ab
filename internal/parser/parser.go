// Package parser turns a free-form video description into a timed zone cue
// timeline.
package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/fitsync/session-service/internal/zone"
)

// Entry is one parsed cue segment.
type Entry struct {
	StartS int       `json:"startS"`
	EndS   int       `json:"endS"`
	Zone   zone.Code `json:"zoneCode"`
	Label  string    `json:"label"`
}

var (
	// M:SS, MM:SS or H:MM:SS, optionally followed by a dash-separated
	// explicit end timestamp.
	tsRe = regexp.MustCompile(`((?:\d{1,2}:)?\d{1,2}:\d{2})(?:\s*[-–—]\s*((?:\d{1,2}:)?\d{1,2}:\d{2}))?`)
	// Emoji glyph or color word. The grey glyph carries its variation
	// selector, matching how it appears in descriptions.
	tokRe = regexp.MustCompile(`(?i)(⚪|⚫️|🔵|🟢|🟡|🔴|\bwhite\b|\bgrey\b|\bgray\b|\bblue\b|\bgreen\b|\byellow\b|\bred\b)`)
)

// Parse extracts cue entries from a description. Lines missing a timestamp or
// a zone token are dropped silently. Entries come back sorted by start time
// (stable for equal starts); each entry's end is its explicit end timestamp if
// one was given, otherwise the next entry's start, and for the last entry the
// supplied video duration.
func Parse(description string, durationS int) []Entry {
	var out []Entry
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ts := tsRe.FindStringSubmatchIndex(line)
		tok := tokRe.FindStringSubmatchIndex(line)
		if ts == nil || tok == nil {
			continue
		}
		z, ok := zone.FromToken(line[tok[2]:tok[3]])
		if !ok {
			continue
		}
		start := toSeconds(line[ts[2]:ts[3]])
		end := -1
		if ts[4] >= 0 {
			end = toSeconds(line[ts[4]:ts[5]])
		}
		label := strings.TrimSpace(splice(line, ts[0], ts[1], tok[0], tok[1]))
		if label == "" {
			label = "no label"
		}
		out = append(out, Entry{StartS: start, EndS: end, Zone: z.Code, Label: label})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartS < out[j].StartS })
	for i := range out {
		if out[i].EndS >= 0 {
			continue
		}
		if i < len(out)-1 {
			out[i].EndS = out[i+1].StartS
		} else {
			out[i].EndS = durationS
		}
	}
	return out
}

// toSeconds converts "M:SS"/"MM:SS"/"H:MM:SS" to seconds.
func toSeconds(ts string) int {
	parts := strings.Split(ts, ":")
	n := make([]int, len(parts))
	for i, p := range parts {
		n[i], _ = strconv.Atoi(p)
	}
	if len(n) == 3 {
		return n[0]*3600 + n[1]*60 + n[2]
	}
	return n[0]*60 + n[1]
}

// splice removes the timestamp span [a0,a1) and zone-token span [b0,b1) from
// the line; the token may sit on either side of the timestamp.
func splice(s string, a0, a1, b0, b1 int) string {
	if a0 > b0 {
		a0, a1, b0, b1 = b0, b1, a0, a1
	}
	return s[:a0] + s[a1:b0] + s[b1:]
}
