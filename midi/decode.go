package midi

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	headerTag = [4]byte{'M', 'T', 'h', 'd'}
	trackTag  = [4]byte{'M', 'T', 'r', 'k'}
)

// File is a decoded Standard MIDI File.
type File struct {
	Format              uint16
	NumTracks           uint16
	TicksPerQuarterNote uint16
	Tempo               float64
	Tracks              []Track
}

func (f *File) String() string {
	var b strings.Builder
	for i, t := range f.Tracks {
		fmt.Fprintf(&b, "Track %d\n", i+1)
		b.WriteString(t.String())
	}
	return b.String()
}

// Open decodes the named file. The file is closed on every path.
func Open(name string, o Options) (*File, error) {
	r, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(ErrIO, err.Error())
	}
	defer func() {
		_ = r.Close()
	}()
	return Decode(r, o)
}

// Decode reads a whole file from r. Unless o.Partial is set a failure
// returns no file at all.
func Decode(r io.Reader, o Options) (*File, error) {
	d := &decoder{
		r:     NewReader(r, o.window(), o.MaxSize),
		opt:   o,
		log:   o.logger(),
		tempo: newTempo(),
	}
	f, err := d.read()
	if err != nil && !o.Partial {
		return nil, err
	}
	return f, err
}

type decoder struct {
	r     *Reader
	opt   Options
	log   logrus.FieldLogger
	tempo *tempo
}

func (d *decoder) fail(stage Stage, track int, err error) error {
	return &ParseError{Stage: stage, Track: track, Offset: d.r.Offset(), Err: err}
}

func (d *decoder) read() (f *File, err error) {
	f = &File{}
	err = d.readHeader(f)
	if err != nil {
		return nil, err
	}
	f.Tracks = make([]Track, f.NumTracks)
	for i := range f.Tracks {
		f.Tracks[i], err = d.readTrack(i, f.TicksPerQuarterNote)
		if err != nil {
			break
		}
	}
	f.Tempo = d.tempo.BPM()
	return
}

func (d *decoder) readHeader(f *File) (err error) {
	var header [4]byte
	err = d.r.ReadFull(header[:])
	if err != nil {
		return d.fail(StageHeader, 0, err)
	} else if header != headerTag {
		return d.fail(StageHeader, 0, errors.Wrapf(ErrFormat, "header not supported %q", header[:]))
	}
	var headerSize uint32
	headerSize, err = d.r.ReadUint32()
	if err != nil {
		return d.fail(StageHeader, 0, err)
	} else if headerSize != 6 {
		return d.fail(StageHeader, 0, errors.Wrapf(ErrFormat, "expected header size to be 6, was %d", headerSize))
	}
	for _, v := range []*uint16{&f.Format, &f.NumTracks, &f.TicksPerQuarterNote} {
		*v, err = d.r.ReadUint16()
		if err != nil {
			return d.fail(StageHeader, 0, err)
		}
	}
	if f.TicksPerQuarterNote == 0 || f.TicksPerQuarterNote&0x8000 != 0 {
		return d.fail(StageHeader, 0, errors.Wrapf(ErrFormat, "unsupported time division %#04x", f.TicksPerQuarterNote))
	}
	d.log.WithFields(logrus.Fields{
		"format":   f.Format,
		"tracks":   f.NumTracks,
		"division": f.TicksPerQuarterNote,
	}).Debug("header")
	return
}

// resync skips junk up to the next track tag within the lookahead window.
// When no tag is in sight the position is left alone.
func (d *decoder) resync(track int) error {
	b, err := d.r.Peek(d.opt.window())
	if err != nil {
		return err
	}
	i := bytes.Index(b, trackTag[:])
	switch {
	case i < 0:
		d.log.WithField("track", track).Debugf("no track tag within %d bytes", len(b))
		return nil
	case i > 0:
		d.log.WithField("track", track).Debugf("skipping %d bytes before track", i)
	}
	return d.r.Discard(i)
}

func (d *decoder) readTrack(i int, division uint16) (Track, error) {
	err := d.resync(i)
	if err != nil {
		return nil, d.fail(StageChunk, i, err)
	}
	var header [4]byte
	err = d.r.ReadFull(header[:])
	if err != nil {
		return nil, d.fail(StageChunk, i, err)
	} else if header != trackTag {
		return nil, d.fail(StageChunk, i, errors.Wrapf(ErrFormat, "track not supported %q", header[:]))
	}
	size, err := d.r.ReadUint32()
	if err != nil {
		return nil, d.fail(StageChunk, i, err)
	}
	t := &trackDecoder{
		decoder:  d,
		division: float64(division),
		notes:    newAssembler(),
		log:      d.log.WithField("track", i),
	}
	for left := int64(size); left > 0; {
		n, end, err := t.readEvent(left)
		if err != nil {
			return nil, d.fail(StageEvent, i, err)
		}
		left -= n
		if end {
			break
		}
	}
	return t.notes.Track(), nil
}

// span charges every byte read to the remaining size of a track chunk.
type span struct {
	r    *Reader
	left int64
	n    int64
}

func (s *span) ReadByte() (b byte, err error) {
	if s.left <= 0 {
		return 0, errors.Wrap(ErrTruncated, "event runs past end of track")
	}
	b, err = s.r.ReadByte()
	if err != nil {
		return
	}
	s.left--
	s.n++
	return
}

func (s *span) ReadFull(p []byte) error {
	if int64(len(p)) > s.left {
		return errors.Wrapf(ErrTruncated, "%d bytes requested, %d left in track", len(p), s.left)
	}
	err := s.r.ReadFull(p)
	if err != nil {
		return err
	}
	s.left -= int64(len(p))
	s.n += int64(len(p))
	return nil
}

func (s *span) data() (b byte, err error) {
	b, err = s.ReadByte()
	if err == nil && b&0x80 != 0 {
		err = errors.Wrapf(ErrFormat, "status %#02x where data expected", b)
	}
	return
}

type trackDecoder struct {
	*decoder
	status   byte
	ticks    uint64
	division float64
	notes    *assembler
	log      logrus.FieldLogger
}

func (t *trackDecoder) now() float64 {
	return float64(t.ticks) / t.division
}

// readEvent decodes one event of at most left bytes and returns the bytes
// it consumed and whether it ended the track.
func (t *trackDecoder) readEvent(left int64) (n int64, end bool, err error) {
	s := &span{r: t.r, left: left}
	defer func() {
		n = s.n
	}()
	delta, _, err := ReadVarUint(s)
	if err != nil {
		return
	}
	t.ticks += uint64(delta)
	var status byte
	status, err = s.ReadByte()
	if err != nil {
		return
	}
	switch {
	case status == SysEx || status == SysExEscape:
		err = t.readSysEx(s)
	case status == Meta:
		end, err = t.readMeta(s)
	case status>>4 == System:
		err = errors.Wrapf(ErrFormat, "unknown system status %#02x", status)
	case status&0x80 != 0:
		t.status = status
		var data byte
		data, err = s.data()
		if err != nil {
			return
		}
		err = t.readChannel(s, status, data)
	case t.status == 0:
		err = errors.Wrap(ErrFormat, "running status without a previous status")
	default:
		err = t.readChannel(s, t.status, status)
	}
	return
}

func (t *trackDecoder) readSysEx(s *span) error {
	for {
		b, err := s.ReadByte()
		if err != nil {
			return err
		}
		if b == SysExEscape {
			return nil
		}
	}
}

func (t *trackDecoder) readMeta(s *span) (end bool, err error) {
	var kind byte
	kind, err = s.ReadByte()
	if err != nil {
		return
	}
	if kind == EndOfTrack {
		t.log.WithField("time", t.now()).Debug("end of track")
		return true, nil
	}
	n, _, err := ReadVarUint(s)
	if err != nil {
		return
	}
	if int64(n) > s.left {
		return false, errors.Wrapf(ErrTruncated, "%s of %d bytes, %d left in track", metaName(kind), n, s.left)
	}
	data := make([]byte, n)
	err = s.ReadFull(data)
	if err != nil {
		return
	}
	switch kind {
	case Tempo:
		err = t.tempo.Set(data)
		if err == nil {
			t.log.WithField("bpm", t.tempo.BPM()).Debug("tempo")
		}
	default:
		t.log.WithField("length", n).Debugf("ignoring %s", metaName(kind))
	}
	return
}

func (t *trackDecoder) readChannel(s *span, status, data1 byte) (err error) {
	kind, channel := status>>4, status&0x0F
	var data2 byte
	if dataBytes(kind) == 2 {
		data2, err = s.data()
		if err != nil {
			return
		}
	}
	switch kind {
	case NoteOn:
		if data2 == 0 && t.opt.ZeroVelocityOff {
			t.noteOff(channel, data1)
			break
		}
		if t.notes.On(channel, data1, data2, t.now()) {
			t.log.WithFields(logrus.Fields{"channel": channel, "pitch": data1}).Debug("note on while already sounding")
		}
	case NoteOff:
		t.noteOff(channel, data1)
	default:
		t.log.WithField("channel", channel).Debugf("ignoring %s", TypeName[kind])
	}
	return
}

func (t *trackDecoder) noteOff(channel, pitch byte) {
	if !t.notes.Off(channel, pitch, t.now()) {
		t.log.WithFields(logrus.Fields{"channel": channel, "pitch": pitch}).Debug("note off without note on")
	}
}
