package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey string

const (
	LogFieldsContextKey = contextKey("log_fields")

	ProjectDirectoryName = "pancli"
	ModuleName           = "github.com/zf1976/pancli"
)

// log_fields keys
const (
	// LoginIDFieldKey identifies a single QR login attempt (string, uuid)
	LoginIDFieldKey = "login_id"
	// StageFieldKey login stage (string, ex: poll)
	StageFieldKey = "stage"
	// EndpointFieldKey logical provider endpoint name (string, ex: query)
	EndpointFieldKey = "endpoint"
	// MethodFieldKey request's method (string)
	MethodFieldKey = "method"
	// URLFieldKey request URL (string)
	URLFieldKey = "url"
	// StatusCodeFieldKey response status code (int)
	StatusCodeFieldKey = "status_code"
	// AttemptFieldKey poll attempt number, 1-based (int)
	AttemptFieldKey = "attempt"
	// QRStatusFieldKey scan status reported by the provider (string)
	QRStatusFieldKey = "qr_status"
	// TookFieldKey request duration (time.Duration)
	TookFieldKey = "took"
)

var (
	formatterInitOnce sync.Once
	defaultLogger     = logrus.New()

	// closers holds writers opened by SetOutputs that need closing.
	closers   []io.Closer
	closersMu sync.Mutex
)

func Level() string {
	return defaultLogger.GetLevel().String()
}

type Fields map[string]interface{}

// logCallerTrimmer is used to trim the caller paths to be relative to the project root
func logCallerTrimmer(frame *runtime.Frame) (function string, file string) {
	indexOfModule := strings.Index(strings.ToLower(frame.File), ProjectDirectoryName)
	if indexOfModule != -1 {
		file = frame.File[indexOfModule+len(ProjectDirectoryName):]
		// skip the rest of the directory name (pancli-dev, pancli_foo)
		if sep := strings.IndexRune(file, os.PathSeparator); sep != -1 {
			file = file[sep:]
		}
	} else {
		file = frame.File
	}
	file = fmt.Sprintf("%s:%d", strings.TrimPrefix(file, string(os.PathSeparator)), frame.Line)
	function = strings.TrimPrefix(frame.Function, ModuleName+"/")
	return
}

func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "trace":
		defaultLogger.SetLevel(logrus.TraceLevel)
	case "debug":
		defaultLogger.SetLevel(logrus.DebugLevel)
	case "info":
		defaultLogger.SetLevel(logrus.InfoLevel)
	case "warn", "warning":
		defaultLogger.SetLevel(logrus.WarnLevel)
	case "error":
		defaultLogger.SetLevel(logrus.ErrorLevel)
	case "panic":
		defaultLogger.SetLevel(logrus.PanicLevel)
	case "null", "none":
		defaultLogger.SetLevel(logrus.PanicLevel)
		defaultLogger.SetOutput(io.Discard)
	}
}

// SetOutputs directs log output: "-" is stdout, "=" is stderr, and anything else is a file
// rotated by lumberjack.  An empty list keeps the current output.
func SetOutputs(outputs []string, fileMaxSizeMB, filesKeep int) error {
	if err := CloseWriters(); err != nil {
		return err
	}
	var writers []io.Writer
	closersMu.Lock()
	defer closersMu.Unlock()
	for _, output := range outputs {
		var w io.Writer
		switch output {
		case "":
			continue
		case "-":
			w = os.Stdout
		case "=":
			w = os.Stderr
		default:
			l := &lumberjack.Logger{
				Filename:   output,
				MaxSize:    fileMaxSizeMB,
				MaxBackups: filesKeep,
			}
			closers = append(closers, l)
			w = l
		}
		writers = append(writers, w)
	}
	if len(writers) == 1 {
		defaultLogger.SetOutput(writers[0])
	} else if len(writers) > 1 {
		defaultLogger.SetOutput(io.MultiWriter(writers...))
	}
	return nil
}

// CloseWriters closes any file outputs opened by SetOutputs.
func CloseWriters() error {
	closersMu.Lock()
	defer closersMu.Unlock()
	var errs []error
	for _, c := range closers {
		errs = append(errs, c.Close())
	}
	closers = nil
	return errors.Join(errs...)
}

func SetOutputFormat(format string) {
	var formatter logrus.Formatter
	switch strings.ToLower(format) {
	case "text":
		formatter = &logrus.TextFormatter{
			FullTimestamp:          true,
			DisableLevelTruncation: true,
			PadLevelText:           true,
			QuoteEmptyFields:       true,
			CallerPrettyfier:       logCallerTrimmer,
		}
	case "json":
		formatter = &logrus.JSONFormatter{
			CallerPrettyfier: logCallerTrimmer,
			PrettyPrint:      false,
		}
	default:
		return // no known formatter found
	}

	// wrap it with our caller formatter
	defaultLogger.SetFormatter(logrusCallerFormatter{formatter})
}

type Logger interface {
	WithContext(ctx context.Context) Logger
	WithField(key string, value interface{}) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger
	Trace(args ...interface{})
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	IsTracing() bool
	IsDebugging() bool
}

type logrusEntryWrapper struct {
	e *logrus.Entry
}

func (l *logrusEntryWrapper) WithContext(ctx context.Context) Logger {
	return addFromContext(
		&logrusEntryWrapper{l.e.WithContext(ctx)},
		ctx,
	)
}

func (l *logrusEntryWrapper) WithField(key string, value interface{}) Logger {
	return &logrusEntryWrapper{l.e.WithField(key, value)}
}

func (l *logrusEntryWrapper) WithFields(fields Fields) Logger {
	return &logrusEntryWrapper{l.e.WithFields(logrus.Fields(fields))}
}

func (l *logrusEntryWrapper) WithError(err error) Logger {
	return &logrusEntryWrapper{l.e.WithError(err)}
}

func (l *logrusEntryWrapper) Trace(args ...interface{}) {
	l.e.Trace(args...)
}

func (l *logrusEntryWrapper) Debug(args ...interface{}) {
	l.e.Debug(args...)
}

func (l *logrusEntryWrapper) Info(args ...interface{}) {
	l.e.Info(args...)
}

func (l *logrusEntryWrapper) Warn(args ...interface{}) {
	l.e.Warn(args...)
}

func (l *logrusEntryWrapper) Error(args ...interface{}) {
	l.e.Error(args...)
}

func (l *logrusEntryWrapper) Fatal(args ...interface{}) {
	l.e.Fatal(args...)
}

func (l *logrusEntryWrapper) Tracef(format string, args ...interface{}) {
	l.e.Tracef(format, args...)
}

func (l *logrusEntryWrapper) Debugf(format string, args ...interface{}) {
	l.e.Debugf(format, args...)
}

func (l *logrusEntryWrapper) Infof(format string, args ...interface{}) {
	l.e.Infof(format, args...)
}

func (l *logrusEntryWrapper) Warnf(format string, args ...interface{}) {
	l.e.Warnf(format, args...)
}

func (l *logrusEntryWrapper) Errorf(format string, args ...interface{}) {
	l.e.Errorf(format, args...)
}

func (*logrusEntryWrapper) IsTracing() bool {
	return defaultLogger.IsLevelEnabled(logrus.TraceLevel)
}

func (*logrusEntryWrapper) IsDebugging() bool {
	return defaultLogger.IsLevelEnabled(logrus.DebugLevel)
}

type logrusCallerFormatter struct {
	f logrus.Formatter
}

func (lf logrusCallerFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Caller = getCaller()
	return lf.f.Format(e)
}

const maximumCallerDepth = 25

// getCaller returns the first frame outside of logrus and this package.
func getCaller() *runtime.Frame {
	pcs := make([]uintptr, maximumCallerDepth)
	depth := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:depth])
	loggingPackage := ModuleName + "/pkg/logging."
	for f, again := frames.Next(); again; f, again = frames.Next() {
		if strings.HasPrefix(f.Function, "github.com/sirupsen/logrus") ||
			(strings.HasPrefix(f.Function, loggingPackage) && !strings.HasSuffix(f.File, "_test.go")) {
			continue
		}
		return &f
	}
	return nil
}

// ContextUnavailable returns the default logger.  Use it only where no context is at hand;
// otherwise prefer FromContext so that login fields are kept.
func ContextUnavailable() Logger {
	// wrap formatter with our own formatter that overrides caller
	formatterInitOnce.Do(func() {
		defaultLogger.SetReportCaller(true)
		defaultLogger.Formatter = logrusCallerFormatter{defaultLogger.Formatter}
	})
	return &logrusEntryWrapper{
		e: logrus.NewEntry(defaultLogger),
	}
}

func addFromContext(log Logger, ctx context.Context) Logger {
	fields := ctx.Value(LogFieldsContextKey)
	if fields == nil {
		return log
	}
	loggerFields := fields.(Fields)
	return log.WithFields(loggerFields)
}

func FromContext(ctx context.Context) Logger {
	return addFromContext(ContextUnavailable(), ctx)
}

// AddFields returns a copy of ctx carrying fields in addition to any fields already on it.
func AddFields(ctx context.Context, fields Fields) context.Context {
	loggerFields := Fields{}
	if ctxFields, ok := ctx.Value(LogFieldsContextKey).(Fields); ok {
		for k, v := range ctxFields {
			loggerFields[k] = v
		}
	}
	for k, v := range fields {
		loggerFields[k] = v
	}
	return context.WithValue(ctx, LogFieldsContextKey, loggerFields)
}
