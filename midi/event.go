package midi

import "fmt"

const (
	NoteOff byte = 0x8 | iota
	NoteOn
	Polyphonic
	Control
	Program
	Channel
	PitchBend
	System
)

const (
	SysEx       = 0xF0
	SysExEscape = 0xF7
	Meta        = 0xFF
)

const (
	Sequence = 0x00 + iota
	Text
	Copyright
	Name
	Instrument
	Lyric
	Marker
	CuePoint
	ProgramName
	DeviceName
	ChannelPrefix = 0x20
	PortNumber    = 0x21
	EndOfTrack    = 0x2F
	Tempo         = 0x51
	SMPTEOffset   = 0x54
	TimeSignature = 0x58
	KeySignature  = 0x59
	Sequencer     = 0x7F
)

var (
	TypeName = map[byte]string{
		NoteOff:    "NoteOff",
		NoteOn:     "NoteOn",
		Polyphonic: "Polyphonic",
		Control:    "Control",
		Program:    "Program",
		Channel:    "Channel",
		PitchBend:  "PitchBend",
		System:     "System",
	}
	MetaName = map[byte]string{
		Sequence:      "Sequence",
		Text:          "Text",
		Copyright:     "Copyright",
		Name:          "Name",
		Instrument:    "Instrument",
		Lyric:         "Lyric",
		Marker:        "Marker",
		CuePoint:      "CuePoint",
		ProgramName:   "ProgramName",
		DeviceName:    "DeviceName",
		ChannelPrefix: "ChannelPrefix",
		PortNumber:    "PortNumber",
		EndOfTrack:    "EndOfTrack",
		Tempo:         "Tempo",
		SMPTEOffset:   "SMPTEOffset",
		TimeSignature: "TimeSignature",
		KeySignature:  "KeySignature",
		Sequencer:     "Sequencer",
	}
	NoteName = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
)

func metaName(t byte) string {
	if v, ok := MetaName[t]; ok {
		return v
	}
	return fmt.Sprintf("Meta0x%02X", t)
}

// dataBytes is the number of data bytes following a channel status.
func dataBytes(kind byte) int {
	switch kind {
	case Program, Channel:
		return 1
	}
	return 2
}
