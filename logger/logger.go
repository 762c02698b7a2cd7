package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

type Level int

const (
	InfoLevel  Level = 0x1
	DebugLevel Level = 0x2
	ErrorLevel Level = 0x4
	WarnLevel  Level = 0x8
)

const (
	TestLevel   Level = InfoLevel | DebugLevel | ErrorLevel | WarnLevel
	DeployLevel Level = InfoLevel | ErrorLevel | WarnLevel
)

const LevelNum = 4

// Logger is the narrow logging surface components depend on — enough to
// log a formatted line or a list of values, nothing more.
type Logger interface {
	Printf(string, ...any)
	Println(...any)
}

var (
	infoLog  = log.New(os.Stdout, "[INFO] ", log.Ldate|log.Lmicroseconds|log.Lshortfile)
	debugLog = log.New(os.Stdout, "[DEBUG] ", log.Ldate|log.Lmicroseconds|log.Lshortfile)
	errorLog = log.New(os.Stdout, "[ERROR] ", log.Ldate|log.Lmicroseconds|log.Lshortfile)
	warnLog  = log.New(os.Stdout, "[WARN] ", log.Ldate|log.Lmicroseconds|log.Lshortfile)
	out      = []io.Writer{os.Stdout, os.Stdout, os.Stdout, os.Stdout}
	logs     = []*log.Logger{infoLog, debugLog, errorLog, warnLog}
)

func SetLevel(level Level) {
	for i := 0; i < LevelNum; i++ {
		if ((level >> i) & 1) == 1 {
			logs[i].SetOutput(out[i])
		} else {
			logs[i].SetOutput(io.Discard)
		}
	}
}

func SetOutput(level Level, w io.Writer) {
	for i := 0; i < LevelNum; i++ {
		if ((level >> i) & 1) == 1 {
			logs[i].SetOutput(w)
			out[i] = w
		}
	}
}

var (
	Info  Logger = infoLog
	Debug Logger = debugLog
	Error Logger = errorLog
	Warn  Logger = warnLog
)

// Component is a Logger bound to a fixed name, so a call site only has to
// say what happened, not which subsystem it happened in.
type Component struct {
	name string
}

// Named returns a Component logger prefixed with name, e.g. "pool" or
// "job". Every pool/job/aggregate log line goes through one of these
// instead of the bare global loggers.
func Named(name string) Component {
	return Component{name: name}
}

func (c Component) Printf(format string, args ...any) {
	Info.Printf("[%s] "+format, append([]any{c.name}, args...)...)
}

func (c Component) Println(args ...any) {
	Info.Println(append([]any{fmt.Sprintf("[%s]", c.name)}, args...)...)
}

func (c Component) Debugf(format string, args ...any) {
	Debug.Printf("[%s] "+format, append([]any{c.name}, args...)...)
}

func (c Component) Warnf(format string, args ...any) {
	Warn.Printf("[%s] "+format, append([]any{c.name}, args...)...)
}

func (c Component) Errorf(format string, args ...any) {
	Error.Printf("[%s] "+format, append([]any{c.name}, args...)...)
}
