package midi

import (
	"fmt"
	"strconv"
	"strings"
)

// Note is a sounded pitch. It is open from its note-on until a matching
// note-off assigns the duration, and never changes after that.
type Note struct {
	Channel  uint8
	Pitch    uint8
	Velocity uint8
	Start    float64
	Duration float64
	closed   bool
}

// NewNote returns a closed note.
func NewNote(channel, pitch, velocity uint8, start, duration float64) Note {
	return Note{
		Channel:  channel & 0x0F,
		Pitch:    pitch & 0x7F,
		Velocity: velocity & 0x7F,
		Start:    start,
		Duration: duration,
		closed:   true,
	}
}

func (n Note) Open() bool {
	return !n.closed
}

func (n Note) End() float64 {
	return n.Start + n.Duration
}

func (n Note) Key() uint8 {
	return n.Pitch % 12
}

func (n Note) Octave() int {
	return int(n.Pitch)/12 - 1
}

// Name is the pitch name with octave, middle C being C4.
func (n Note) Name() string {
	return NoteName[n.Key()] + strconv.Itoa(n.Octave())
}

func (n Note) String() string {
	return fmt.Sprintf("%s %d %v %v", n.Name(), n.Velocity, n.Start, n.End())
}

type Track []Note

func (t Track) String() string {
	var b strings.Builder
	for _, n := range t {
		b.WriteString(n.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// assembler pairs note-ons with note-offs for one track.
type assembler struct {
	track Track
	open  map[uint16][]int
}

func newAssembler() *assembler {
	return &assembler{open: map[uint16][]int{}}
}

func slot(channel, pitch byte) uint16 {
	return uint16(channel)<<7 | uint16(pitch)
}

// On opens a note and reports whether another note of the same channel and
// pitch was still sounding.
func (a *assembler) On(channel, pitch, velocity byte, start float64) bool {
	k := slot(channel, pitch)
	a.open[k] = append(a.open[k], len(a.track))
	a.track = append(a.track, Note{Channel: channel, Pitch: pitch, Velocity: velocity, Start: start})
	return len(a.open[k]) > 1
}

// Off closes the most recently opened note of channel and pitch. It reports
// false, leaving the track alone, when no such note is open.
func (a *assembler) Off(channel, pitch byte, at float64) bool {
	k := slot(channel, pitch)
	s := a.open[k]
	if len(s) == 0 {
		return false
	}
	i := s[len(s)-1]
	a.open[k] = s[:len(s)-1]
	n := &a.track[i]
	n.Duration = at - n.Start
	n.closed = true
	return true
}

func (a *assembler) Track() Track {
	if a.track == nil {
		return Track{}
	}
	return a.track
}
