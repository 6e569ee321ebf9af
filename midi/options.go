package midi

import (
	"io"

	"github.com/sirupsen/logrus"
)

const (
	DefaultWindow  = 10000
	DefaultMaxSize = 64 << 20
)

type Options struct {
	// Window is how far ahead a track chunk tag is searched for.
	Window int
	// MaxSize caps the bytes read from the source, 0 or less means unlimited.
	MaxSize int64
	// Partial returns the tracks decoded before a failure along with the error.
	Partial bool
	// ZeroVelocityOff treats a note-on of velocity 0 as a note-off.
	ZeroVelocityOff bool
	Logger          logrus.FieldLogger
}

func DefaultOptions() Options {
	return Options{
		Window:  DefaultWindow,
		MaxSize: DefaultMaxSize,
	}
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func (o Options) window() int {
	if o.Window <= 0 {
		return DefaultWindow
	}
	return o.Window
}
