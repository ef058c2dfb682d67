package telemetry

import "io"

// noOpCollector discards every measurement. FromContext hands it out when no
// collector was installed, so validation code never has to nil-check.
type noOpCollector struct{}

func (noOpCollector) Start(name string) Timer {
	return noOpTimer{}
}

func (noOpCollector) Report(w io.Writer, styles interface{}) {}

// noOpTimer is the timer counterpart; End and Child cost nothing.
type noOpTimer struct{}

func (noOpTimer) End() {}

func (noOpTimer) Child(name string) Timer {
	return noOpTimer{}
}
