// Package song turns a decoded track into a monophonic list of pitches and
// rests for a simple synthesizer.
package song

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pshvedko/smfnotes/midi"
)

// Rest is the name of a silent element.
const Rest = "r"

// Element is a pitch or a rest. Dur is a note value where 4 is a quarter,
// 2 a half and 8 an eighth.
type Element struct {
	Name  string
	Pitch uint8
	Dur   float64
}

func (e Element) Rest() bool {
	return e.Name == Rest
}

// Seconds is the length of the element at bpm quarter notes per minute.
func (e Element) Seconds(bpm float64) float64 {
	return 4 / e.Dur * 60 / bpm
}

func (e Element) String() string {
	return fmt.Sprintf("('%s', %s)", e.Name, strconv.FormatFloat(e.Dur, 'g', -1, 64))
}

type Song []Element

func (s Song) String() string {
	a := make([]string, len(s))
	for i, e := range s {
		a[i] = e.String()
	}
	return "[" + strings.Join(a, ", ") + "]"
}

// Quarters is the length of the song in quarter notes.
func (s Song) Quarters() (q float64) {
	for _, e := range s {
		q += 4 / e.Dur
	}
	return
}

// fraction converts a length in quarter notes to a note value.
func fraction(quarters float64) float64 {
	return 4 / quarters
}

// FromTrack keeps the first note of every onset, inserts rests into gaps
// and drops notes that never closed or have no length.
func FromTrack(t midi.Track) Song {
	var s Song
	first := true
	var lastStart, lastEnd float64
	for _, n := range t {
		if n.Open() || n.Duration <= 0 {
			continue
		}
		if !first && n.Start == lastStart {
			continue
		}
		if !first && n.Start > lastEnd {
			s = append(s, Element{Name: Rest, Dur: fraction(n.Start - lastEnd)})
		}
		first = false
		lastStart, lastEnd = n.Start, n.End()
		s = append(s, Element{
			Name:  strings.ToLower(n.Name()),
			Pitch: n.Pitch,
			Dur:   fraction(n.Duration),
		})
	}
	return s
}
