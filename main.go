package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pshvedko/smfnotes/config"
	"github.com/pshvedko/smfnotes/midi"
	"github.com/pshvedko/smfnotes/piano"
	"github.com/pshvedko/smfnotes/song"
	"github.com/pshvedko/smfnotes/xmlnote"
)

var client = http.Client{Timeout: 30 * time.Second}

func open(file string) (io.ReadCloser, error) {
	u, err := url.Parse(file)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "file", "":
		return os.Open(u.Path)
	case "http", "https":
		r, err := client.Get(file)
		if err != nil {
			return nil, err
		}
		if r.StatusCode != http.StatusOK {
			_ = r.Body.Close()
			return nil, errors.Errorf("%s: %s", file, r.Status)
		}
		return r.Body, nil
	}
	return nil, errors.Errorf("unsupported scheme %q", u.Scheme)
}

func load(name string, cfg *config.Config, asXML bool) (f *midi.File, err error) {
	r, err := open(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Close()
	}()
	log := logrus.WithField("file", name)
	if asXML {
		var t midi.Track
		t, err = xmlnote.Read(r, log)
		if err != nil {
			return nil, err
		}
		// times in the document are already in quarter notes
		return &midi.File{NumTracks: 1, TicksPerQuarterNote: 1, Tempo: midi.DefaultTempo, Tracks: []midi.Track{t}}, nil
	}
	return midi.Decode(r, cfg.Options(log))
}

// pick prefers track i and falls back to the first track with notes.
func pick(f *midi.File, i int) (midi.Track, int) {
	if i >= 0 && i < len(f.Tracks) && len(f.Tracks[i]) > 0 {
		return f.Tracks[i], i
	}
	for j, t := range f.Tracks {
		if len(t) > 0 {
			return t, j
		}
	}
	return nil, -1
}

func writeWAV(path string, f *midi.File, cfg *config.Config) error {
	t, i := pick(f, cfg.Track)
	if i < 0 {
		return errors.New("no notes to render")
	}
	if i != cfg.Track {
		logrus.Warnf("track %d has no notes, rendering track %d", cfg.Track, i)
	}
	s := song.FromTrack(t)
	logrus.Debug(s)
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = w.Close()
	}()
	err = piano.Synth{Rate: cfg.SampleRate, MaxSeconds: cfg.MaxSeconds}.WriteWAV(w, s, f.Tempo)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"track": i, "bpm": f.Tempo, "elements": len(s)}).Infof("wrote %s", path)
	return w.Close()
}

func writePNG(path string, f *midi.File, cfg *config.Config) error {
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = w.Close()
	}()
	err = piano.Roll{Scale: cfg.Roll.Scale, Height: cfg.Roll.Height}.WritePNG(w, f)
	if err != nil {
		return err
	}
	logrus.Infof("wrote %s", path)
	return w.Close()
}

func main() {
	path, _ := config.Path()
	var v, x, partial, zero bool
	var window, track, rate int
	var wav, png string
	flag.StringVar(&path, "config", path, "configuration file")
	flag.BoolVar(&v, "verbose", false, "log decoding details")
	flag.BoolVar(&x, "xml", false, "read MidiNote elements of XML documents instead of MIDI files")
	flag.BoolVar(&partial, "partial", false, "keep the tracks decoded before an error")
	flag.BoolVar(&zero, "zero-off", true, "treat note on with velocity 0 as note off")
	flag.IntVar(&window, "window", midi.DefaultWindow, "bytes searched for the next track tag")
	flag.IntVar(&track, "track", 1, "track rendered to WAV")
	flag.IntVar(&rate, "rate", 44100, "WAV sample rate")
	flag.StringVar(&wav, "wav", "", "render a track of the first input to this WAV file")
	flag.StringVar(&png, "png", "", "draw the first input as a piano roll to this PNG file")
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file-or-url...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	if v {
		logrus.SetLevel(logrus.DebugLevel)
	}
	cfg, err := config.Load(path)
	if err != nil {
		logrus.Fatal(err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "partial":
			cfg.Partial = partial
		case "zero-off":
			cfg.ZeroVelocityOff = zero
		case "window":
			cfg.Window = window
		case "track":
			cfg.Track = track
		case "rate":
			cfg.SampleRate = rate
		}
	})

	files := make([]*midi.File, flag.NArg())
	var g errgroup.Group
	for i, name := range flag.Args() {
		i, name := i, name
		g.Go(func() error {
			f, err := load(name, cfg, x)
			if err != nil {
				if f == nil {
					return errors.WithMessage(err, name)
				}
				logrus.WithField("file", name).Warn(err)
			}
			files[i] = f
			return nil
		})
	}
	err = g.Wait()
	if err != nil {
		logrus.Fatal(err)
	}
	for i, f := range files {
		fmt.Printf("%s: format %d, %d tracks, %d ticks per quarter, %v bpm\n",
			flag.Arg(i), f.Format, f.NumTracks, f.TicksPerQuarterNote, f.Tempo)
		fmt.Print(f)
	}
	if wav != "" {
		err = writeWAV(wav, files[0], cfg)
		if err != nil {
			logrus.Fatal(err)
		}
	}
	if png != "" {
		err = writePNG(png, files[0], cfg)
		if err != nil {
			logrus.Fatal(err)
		}
	}
}
