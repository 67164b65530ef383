package logging

// Sink is the logging surface shared by the file logger and the console.
type Sink interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// Tee fans every message out to all sinks. Nil sinks are skipped.
func Tee(sinks ...Sink) Sink {
	var live multi
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	return live
}

type multi []Sink

func (m multi) Debugf(format string, v ...interface{}) {
	for _, s := range m {
		s.Debugf(format, v...)
	}
}

func (m multi) Infof(format string, v ...interface{}) {
	for _, s := range m {
		s.Infof(format, v...)
	}
}

func (m multi) Warnf(format string, v ...interface{}) {
	for _, s := range m {
		s.Warnf(format, v...)
	}
}

func (m multi) Errorf(format string, v ...interface{}) {
	for _, s := range m {
		s.Errorf(format, v...)
	}
}

// Discard is a Sink that drops everything.
var Discard Sink = multi(nil)
