package piano

import (
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"

	"github.com/pshvedko/smfnotes/song"
)

const (
	release = 0.005
	// MaxSeconds is the default longest song Render accepts.
	MaxSeconds = 600
)

var ErrTooLong = errors.New("song too long")

// Synth renders songs with a decaying additive piano voice.
type Synth struct {
	Rate       int
	Volume     byte
	MaxSeconds float64
}

type voice struct {
	frequency float64
	volume    byte
	wave      float64
}

func newVoice(pitch, volume byte) *voice {
	return &voice{
		frequency: 440 * math.Exp2(float64(int(pitch)-69)/12),
		volume:    volume,
	}
}

func (v *voice) Sample(r int) float64 {
	t := math.Pi * v.frequency * v.wave / float64(r/2)
	f := math.Sin(1*t) * math.Exp(-.001*t) / 2
	f += math.Sin(2*t) * math.Exp(-.002*t) / 4
	f += math.Sin(4*t) * math.Exp(-.003*t) / 8
	f += math.Sin(8*t) * math.Exp(-.004*t) / 16
	f += f * f * f
	f *= .3
	v.wave++
	return f * float64(v.volume) * math.MaxInt16 / 127
}

func (s Synth) volume() byte {
	if s.Volume == 0 || s.Volume > 127 {
		return 127
	}
	return s.Volume
}

func (s Synth) maxSeconds() float64 {
	if s.MaxSeconds <= 0 {
		return MaxSeconds
	}
	return s.MaxSeconds
}

// Render returns 16-bit mono samples of the song at bpm. Songs longer than
// MaxSeconds fail with ErrTooLong before anything is allocated.
func (s Synth) Render(sg song.Song, bpm float64) ([]int, error) {
	if s.Rate <= 0 {
		return nil, errors.Errorf("invalid sample rate %d", s.Rate)
	}
	if bpm <= 0 || math.IsInf(bpm, 0) || math.IsNaN(bpm) {
		return nil, errors.Errorf("invalid tempo %v", bpm)
	}
	var seconds float64
	for _, e := range sg {
		seconds += e.Seconds(bpm)
	}
	if seconds > s.maxSeconds() || math.IsNaN(seconds) {
		return nil, errors.Wrapf(ErrTooLong, "%.0f seconds, limit %.0f", seconds, s.maxSeconds())
	}
	a := make([]int, 0, int(seconds*float64(s.Rate))+len(sg))
	fade := int(release * float64(s.Rate))
	for _, e := range sg {
		n := int(math.Round(e.Seconds(bpm) * float64(s.Rate)))
		if e.Rest() {
			a = append(a, make([]int, n)...)
			continue
		}
		v := newVoice(e.Pitch, s.volume())
		for i := 0; i < n; i++ {
			z := v.Sample(s.Rate)
			if k := n - i; k < fade {
				z *= float64(k-1) / float64(fade)
			}
			a = append(a, int(math.Max(math.MinInt16, math.Min(math.MaxInt16, z))))
		}
	}
	return a, nil
}

// WriteWAV encodes the rendered song as a 16-bit mono WAV file.
func (s Synth) WriteWAV(w io.WriteSeeker, sg song.Song, bpm float64) error {
	data, err := s.Render(sg, bpm)
	if err != nil {
		return err
	}
	e := wav.NewEncoder(w, s.Rate, 16, 1, 1)
	b := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: s.Rate, NumChannels: 1},
		SourceBitDepth: 16,
	}
	if err = e.Write(b); err != nil {
		return errors.Wrap(err, "write wav")
	}
	return errors.Wrap(e.Close(), "close wav")
}
