package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/nektos/stv/pkg/common"
	"github.com/nektos/stv/pkg/common/utils"
)

const (
	// nocolor = 0
	red     = 31
	green   = 32
	yellow  = 33
	blue    = 34
	magenta = 35
	cyan    = 36
	gray    = 37
)

var levelColors = map[log.Level]int{
	log.PanicLevel: red,
	log.FatalLevel: red,
	log.ErrorLevel: red,
	log.WarnLevel:  yellow,
	log.InfoLevel:  blue,
	log.DebugLevel: gray,
	log.TraceLevel: gray,
}

// Options for a command logger
type Options struct {
	JSON   bool
	Level  log.Level
	Output io.Writer
}

// WithCommandLogger attaches a new logger to context that prefixes every line with the command name
func WithCommandLogger(ctx context.Context, command string, opts Options) context.Context {
	var formatter log.Formatter
	if opts.JSON {
		formatter = &log.JSONFormatter{}
	} else {
		formatter = &commandLogFormatter{}
	}

	logger := log.New()
	logger.SetFormatter(formatter)
	if opts.Output != nil {
		logger.SetOutput(opts.Output)
	}
	logger.SetLevel(opts.Level)
	rtn := logger.WithFields(log.Fields{"command": command})

	return common.WithLogger(ctx, rtn)
}

type commandLogFormatter struct{}

func (f *commandLogFormatter) Format(entry *log.Entry) ([]byte, error) {
	b := &bytes.Buffer{}

	if f.isColored(entry) {
		f.printColored(b, entry)
	} else {
		f.print(b, entry)
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (f *commandLogFormatter) printColored(b *bytes.Buffer, entry *log.Entry) {
	message := strings.TrimSuffix(entry.Message, "\n")
	_, _ = fmt.Fprintf(b, "\x1b[%dm[%s] \x1b[0m%s", levelColors[entry.Level], entry.Data["command"], message)
	for _, k := range fieldKeys(entry) {
		_, _ = fmt.Fprintf(b, " \x1b[%dm%s\x1b[0m=%v", cyan, k, entry.Data[k])
	}
}

func (f *commandLogFormatter) print(b *bytes.Buffer, entry *log.Entry) {
	message := strings.TrimSuffix(entry.Message, "\n")
	_, _ = fmt.Fprintf(b, "[%s] %s", entry.Data["command"], message)
	for _, k := range fieldKeys(entry) {
		_, _ = fmt.Fprintf(b, " %s=%v", k, entry.Data[k])
	}
}

func (f *commandLogFormatter) isColored(entry *log.Entry) bool {
	return utils.CheckIfColorable(entry.Logger.Out)
}

func fieldKeys(entry *log.Entry) []string {
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k != "command" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
