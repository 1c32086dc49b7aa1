package core

// Logger is any service that can log application events.
// args may carry errors and extra context maps; implementations decide what to do with them.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Actor identifies who triggered a logged event. Loggers attach it to the report when present.
type Actor struct {
	ID   string
	Name string
}
