package log

import (
	"io"
	"log"
	"os"
	"sync"

	"github.com/fatih/color"
)

var (
	errorLog = log.New(os.Stdout, color.RedString("[error]")+" ", log.LstdFlags|log.Lshortfile)
	infoLog  = log.New(os.Stdout, color.BlueString("[info ]")+" ", log.LstdFlags|log.Lshortfile)
	debugLog = log.New(os.Stdout, color.HiBlackString("[debug]")+" ", log.LstdFlags|log.Lshortfile)
	loggers  = []*log.Logger{errorLog, infoLog, debugLog}
	mu       sync.Mutex
	out      io.Writer = os.Stdout
	current  = InfoLevel
)

var (
	Errorf = errorLog.Printf
	Error  = errorLog.Print
	Infof  = infoLog.Printf
	Info   = infoLog.Print
	Debugf = debugLog.Printf
	Debug  = debugLog.Print
)

const (
	DebugLevel = iota
	InfoLevel
	ErrorLevel
	Disabled
)

// SetLevel 缺省为InfoLevel，debug日志默认关闭
func SetLevel(level int) {
	mu.Lock()
	defer mu.Unlock()
	setLevel(level)
}

// SetOutput sends the enabled levels to w. The CLI points it at stderr so
// logs never mix with the statements it prints.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	setLevel(current)
}

func setLevel(level int) {
	for _, logger := range loggers {
		logger.SetOutput(out)
	}

	if level > Disabled || level < DebugLevel {
		errorLog.Println("错误的level，采用缺省info level")
		level = InfoLevel
	}
	current = level
	if level > ErrorLevel {
		errorLog.SetOutput(io.Discard)
	}
	if level > InfoLevel {
		infoLog.SetOutput(io.Discard)
	}
	if level > DebugLevel {
		debugLog.SetOutput(io.Discard)
	}
}

// DebugEnabled reports whether debug output is on, so callers can skip
// building expensive debug messages.
func DebugEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return debugLog.Writer() != io.Discard
}

func init() {
	SetLevel(InfoLevel)
}
