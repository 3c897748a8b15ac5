package logx

import "log"

// StdLogger is a Logger backed by the standard library log package, for
// host-side binaries (cmd/rcreceiverd, cmd/rcreceiversim).
type StdLogger struct{}

// NewStd returns a StdLogger. Call logx.Set(logx.NewStd()) to install it.
func NewStd() *StdLogger { return &StdLogger{} }

func (l *StdLogger) Debug(msg string) { log.Print("[DEBUG] " + msg) }
func (l *StdLogger) Info(msg string)  { log.Print("[INFO]  " + msg) }
func (l *StdLogger) Warn(msg string)  { log.Print("[WARN]  " + msg) }
func (l *StdLogger) Error(msg string) { log.Print("[ERROR] " + msg) }
