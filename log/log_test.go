package log

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel(InfoLevel)

	testCases := []struct {
		desc  string
		level int
		debug io.Writer
		info  io.Writer
		err   io.Writer
	}{
		{
			desc:  "debug level",
			level: DebugLevel,
			debug: os.Stdout,
			info:  os.Stdout,
			err:   os.Stdout,
		},
		{
			desc:  "info level",
			level: InfoLevel,
			debug: io.Discard,
			info:  os.Stdout,
			err:   os.Stdout,
		},
		{
			desc:  "error level",
			level: ErrorLevel,
			debug: io.Discard,
			info:  io.Discard,
			err:   os.Stdout,
		},
		{
			desc:  "disabled",
			level: Disabled,
			debug: io.Discard,
			info:  io.Discard,
			err:   io.Discard,
		},
		{
			desc:  "more high level falls back to info",
			level: 7,
			debug: io.Discard,
			info:  os.Stdout,
			err:   os.Stdout,
		},
		{
			desc:  "negative level falls back to info",
			level: -1,
			debug: io.Discard,
			info:  os.Stdout,
			err:   os.Stdout,
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			SetLevel(tC.level)
			assert.Equal(t, tC.debug, debugLog.Writer())
			assert.Equal(t, tC.info, infoLog.Writer())
			assert.Equal(t, tC.err, errorLog.Writer())
			assert.Equal(t, tC.debug == os.Stdout, DebugEnabled())
		})
	}
}

func TestSetOutput(t *testing.T) {
	defer SetOutput(os.Stdout)
	defer SetLevel(InfoLevel)

	var buf bytes.Buffer
	SetLevel(ErrorLevel)
	SetOutput(&buf)
	Info("hidden")
	Errorf("lost %s", "connection")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "lost connection")
	assert.Equal(t, io.Discard, infoLog.Writer(), "level survives a new output")
}
