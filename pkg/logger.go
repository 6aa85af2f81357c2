package bridge

type Logger interface {
	Info(message string, module string)
	Error(string)
}

var logger Logger = nopLogger{}

func SetLogger(l Logger) {
	logger = l
}

// nopLogger keeps the package usable before SetLogger is called (tests,
// library embedding).
type nopLogger struct{}

func (nopLogger) Info(string, string) {}
func (nopLogger) Error(string)        {}
