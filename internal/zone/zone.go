// Package zone holds the canonical heart-rate zone table. Every other layer
// (parser, classifiers, handlers) consumes it read-only; there are no other
// copies of the band definitions.
package zone

import (
	"math"
	"strings"
)

// Code identifies one of the six intensity bands.
type Code string

const (
	White  Code = "white"
	Grey   Code = "grey"
	Blue   Code = "blue"
	Green  Code = "green"
	Yellow Code = "yellow"
	Red    Code = "red"
)

// RGB is a reference indicator color.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Def is one zone row: percent-of-HRmax band plus display data.
type Def struct {
	Code       Code   `json:"code"`
	Name       string `json:"name"`
	Emoji      string `json:"emoji"`
	MinPercent int    `json:"minPercent"`
	MaxPercent int    `json:"maxPercent"`
	Color      RGB    `json:"color"`
}

// table is ordered white→red; classification is first-match in this order,
// so at a shared boundary percent the lower band wins.
var table = []Def{
	{Code: White, Name: "Recovery", Emoji: "⚪", MinPercent: 0, MaxPercent: 50, Color: RGB{255, 255, 255}},
	{Code: Grey, Name: "Easy", Emoji: "⚫️", MinPercent: 50, MaxPercent: 59, Color: RGB{158, 158, 158}},
	{Code: Blue, Name: "Aerobic", Emoji: "🔵", MinPercent: 60, MaxPercent: 69, Color: RGB{33, 150, 243}},
	{Code: Green, Name: "Tempo", Emoji: "🟢", MinPercent: 70, MaxPercent: 79, Color: RGB{76, 175, 80}},
	{Code: Yellow, Name: "Threshold", Emoji: "🟡", MinPercent: 80, MaxPercent: 89, Color: RGB{255, 235, 59}},
	{Code: Red, Name: "VO2 Max", Emoji: "🔴", MinPercent: 90, MaxPercent: 100, Color: RGB{244, 67, 54}},
}

// All returns the six zones in canonical white→red order.
func All() []Def {
	out := make([]Def, len(table))
	copy(out, table)
	return out
}

// ByCode looks up a zone definition.
func ByCode(c Code) (Def, bool) {
	for _, z := range table {
		if z.Code == c {
			return z, true
		}
	}
	return Def{}, false
}

// HRMax estimates maximum heart rate from age: round(211 − 0.64·age).
func HRMax(age int) int {
	return int(math.Round(211 - 0.64*float64(age)))
}

// ForBPM maps a heart-rate sample to a zone. Percent of hrMax is matched
// against the bands in canonical order, both ends inclusive. Samples that
// land outside every band (hrMax ≤ 0, negative bpm, the unassigned percents
// between adjacent bands) fall back to the white zone.
func ForBPM(bpm, hrMax int) Def {
	if hrMax <= 0 {
		return table[0]
	}
	percent := float64(bpm) / float64(hrMax) * 100
	for _, z := range table {
		if percent >= float64(z.MinPercent) && percent <= float64(z.MaxPercent) {
			return z
		}
	}
	return table[0]
}

// Range converts a zone's percent band to absolute bpm bounds for a given
// hrMax: [round(hrMax·min/100), round(hrMax·max/100)].
func Range(hrMax int, z Def) [2]int {
	lo := int(math.Round(float64(hrMax) * float64(z.MinPercent) / 100))
	hi := int(math.Round(float64(hrMax) * float64(z.MaxPercent) / 100))
	return [2]int{lo, hi}
}

// PercentRanges returns zoneCode → [minPercent, maxPercent] for all zones.
func PercentRanges() map[Code][2]int {
	out := make(map[Code][2]int, len(table))
	for _, z := range table {
		out[z.Code] = [2]int{z.MinPercent, z.MaxPercent}
	}
	return out
}

// tokens maps every recognized cue token (emoji glyph or lowercase word) to
// its zone code. "gray" is a synonym for grey.
var tokens = map[string]Code{
	"⚪": White, "⚫️": Grey, "🔵": Blue, "🟢": Green, "🟡": Yellow, "🔴": Red,
	"white": White, "grey": Grey, "gray": Grey,
	"blue": Blue, "green": Green, "yellow": Yellow, "red": Red,
}

// FromToken resolves a cue token (case-insensitive word or emoji) to a zone.
func FromToken(tok string) (Def, bool) {
	c, ok := tokens[strings.ToLower(strings.TrimSpace(tok))]
	if !ok {
		return Def{}, false
	}
	return ByCode(c)
}
