package core

// Notifier carries user-facing notices out of the mutation path. The editor
// surface shows them as toasts; the CLI prints them. Failures to deliver a
// notice never affect the operation that raised it.
type Notifier interface {
	Info(msg string)
	Warn(msg string)
}

// NopNotifier discards all notices.
type NopNotifier struct{}

func (NopNotifier) Info(string) {}
func (NopNotifier) Warn(string) {}

// NotifierFunc adapts a function to the Notifier interface. The level is
// "info" or "warn".
type NotifierFunc func(level, msg string)

func (f NotifierFunc) Info(msg string) { f("info", msg) }
func (f NotifierFunc) Warn(msg string) { f("warn", msg) }
