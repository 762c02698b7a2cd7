package logger

import (
	"fmt"
	"io"
	"os"
)

// NewFileWriter opens path for appending log output, creating it if
// necessary. It panics on failure, matching every other setup-time
// failure in this package — a node that can't open its own log file has
// nothing useful to do next.
func NewFileWriter(path string) io.Writer {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		Error.Println(err)
		panic(err)
	}
	return file
}

// RedirectToFiles points every log level at its own file under dir, named
// after nodeID — one file per level, so a fleet of demo nodes sharing a
// host doesn't interleave its logs.
func RedirectToFiles(dir string, nodeID int) {
	SetOutput(InfoLevel, NewFileWriter(fmt.Sprintf("%s/node-%d-info.log", dir, nodeID)))
	SetOutput(DebugLevel, NewFileWriter(fmt.Sprintf("%s/node-%d-debug.log", dir, nodeID)))
	SetOutput(WarnLevel, NewFileWriter(fmt.Sprintf("%s/node-%d-warn.log", dir, nodeID)))
	SetOutput(ErrorLevel, NewFileWriter(fmt.Sprintf("%s/node-%d-error.log", dir, nodeID)))
}
