package midi

import "github.com/pkg/errors"

const DefaultTempo = 120.0

// tempo holds the file-wide tempo; the last Set-Tempo event decoded wins.
type tempo struct {
	bpm float64
}

func newTempo() *tempo {
	return &tempo{bpm: DefaultTempo}
}

// Set applies a Set-Tempo payload of microseconds per quarter note.
func (t *tempo) Set(data []byte) error {
	if len(data) != 3 {
		return errors.Wrapf(ErrFormat, "tempo length not 3 as expected but %d", len(data))
	}
	us := uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])
	if us == 0 {
		return errors.Wrap(ErrFormat, "zero tempo")
	}
	t.bpm = 6e7 / float64(us)
	return nil
}

func (t *tempo) BPM() float64 {
	return t.bpm
}
