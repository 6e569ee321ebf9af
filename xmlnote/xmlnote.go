// Package xmlnote reads notes stored as MidiNote elements of an XML
// document, an alternative to decoding them from a MIDI file.
package xmlnote

import (
	"encoding/xml"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pshvedko/smfnotes/midi"
)

func attr(e xml.StartElement, name string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func byteAttr(e xml.StartElement, name string) (uint8, error) {
	s, ok := attr(e, name)
	if !ok {
		return 0, errors.Errorf("missing %s", name)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrap(err, name)
	}
	if v < 0 || v > 127 {
		return 0, errors.Errorf("%s %d out of range", name, v)
	}
	return uint8(v), nil
}

func floatAttr(e xml.StartElement, name string) (float64, error) {
	s, ok := attr(e, name)
	if !ok {
		return 0, errors.Errorf("missing %s", name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrap(err, name)
	}
	if v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, errors.Errorf("%s %v out of range", name, v)
	}
	return v, nil
}

func parse(e xml.StartElement) (n midi.Note, err error) {
	var pitch, velocity uint8
	var start, duration float64
	if pitch, err = byteAttr(e, "pitch"); err != nil {
		return
	}
	if velocity, err = byteAttr(e, "velocity"); err != nil {
		return
	}
	if start, err = floatAttr(e, "start"); err != nil {
		return
	}
	if duration, err = floatAttr(e, "duration"); err != nil {
		return
	}
	return midi.NewNote(0, pitch, velocity, start, duration), nil
}

// Read collects every MidiNote and TempMidiNote element of the document in
// order. Elements with unusable attributes are skipped with a warning.
func Read(r io.Reader, log logrus.FieldLogger) (midi.Track, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	t := midi.Track{}
	d := xml.NewDecoder(r)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "xmlnote")
		}
		e, ok := tok.(xml.StartElement)
		if !ok || e.Name.Local != "MidiNote" && e.Name.Local != "TempMidiNote" {
			continue
		}
		n, err := parse(e)
		if err != nil {
			line, _ := d.InputPos()
			log.WithField("line", line).Warnf("cannot parse %s: %v", e.Name.Local, err)
			continue
		}
		t = append(t, n)
	}
}
