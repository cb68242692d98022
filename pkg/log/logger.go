package log

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
)

const defaultBufferSize = 4096

// Logger writes levelled, structured entries through a Buffer.
type Logger struct {
	mu         sync.RWMutex
	level      Level
	component  string
	buffer     *Buffer
	baseFields map[string]any
}

// New creates a logger that emits entries at level or above.
func New(level Level, transporters ...Transporter) *Logger {
	return &Logger{
		level:      level,
		buffer:     NewBuffer(defaultBufferSize, transporters...),
		baseFields: make(map[string]any),
	}
}

// SetLevel changes the minimum level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// With returns a child logger sharing the buffer with extra base fields.
func (l *Logger) With(keysAndValues ...any) *Logger {
	child := l.clone()
	mergePairs(child.baseFields, keysAndValues)
	return child
}

// Named returns a child logger whose entries carry the given component name.
func (l *Logger) Named(component string) *Logger {
	child := l.clone()
	child.component = component
	return child
}

func (l *Logger) clone() *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	fields := make(map[string]any, len(l.baseFields))
	for k, v := range l.baseFields {
		fields[k] = v
	}

	return &Logger{
		level:      l.level,
		component:  l.component,
		buffer:     l.buffer,
		baseFields: fields,
	}
}

// Close flushes queued entries and closes the transporters.
func (l *Logger) Close() {
	l.buffer.Close()
}

func (l *Logger) log(ctx context.Context, level Level, msg string, keysAndValues ...any) {
	l.mu.RLock()
	enabled := l.level.Enables(level)
	l.mu.RUnlock()
	if !enabled {
		return
	}

	entry := NewEntry(level, msg)
	entry.Caller = caller(3)
	entry.Component = l.component

	l.mu.RLock()
	for k, v := range l.baseFields {
		entry.Fields[k] = v
	}
	l.mu.RUnlock()

	if ctx != nil {
		entry.RunID = RunIDFromContext(ctx)
		for k, v := range FieldsFromContext(ctx) {
			entry.Fields[k] = v
		}
	}

	mergePairs(entry.Fields, keysAndValues)

	l.buffer.Send(*entry)
}

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

func (l *Logger) Trace(msg string, kv ...any) { l.log(nil, Trace, msg, kv...) }
func (l *Logger) Debug(msg string, kv ...any) { l.log(nil, Debug, msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)  { l.log(nil, Info, msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.log(nil, Warn, msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.log(nil, Error, msg, kv...) }

// Fatal logs at Fatal level. Exiting is left to the caller.
func (l *Logger) Fatal(msg string, kv ...any) { l.log(nil, Fatal, msg, kv...) }

func (l *Logger) DebugCtx(ctx context.Context, msg string, kv ...any) { l.log(ctx, Debug, msg, kv...) }
func (l *Logger) InfoCtx(ctx context.Context, msg string, kv ...any)  { l.log(ctx, Info, msg, kv...) }
func (l *Logger) WarnCtx(ctx context.Context, msg string, kv ...any)  { l.log(ctx, Warn, msg, kv...) }
func (l *Logger) ErrorCtx(ctx context.Context, msg string, kv ...any) { l.log(ctx, Error, msg, kv...) }

// --- process-wide logger ---

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
	discard      = &Logger{level: Fatal + 1, baseFields: map[string]any{}}
)

// SetDefault installs the process-wide logger used by the Global helpers.
func SetDefault(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// Default returns the process-wide logger. Before SetDefault is called it
// returns a logger that drops everything.
func Default() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return discard
	}
	return globalLogger
}

func GlobalDebug(msg string, kv ...any) { Default().log(nil, Debug, msg, kv...) }
func GlobalInfo(msg string, kv ...any)  { Default().log(nil, Info, msg, kv...) }
func GlobalWarn(msg string, kv ...any)  { Default().log(nil, Warn, msg, kv...) }
func GlobalError(msg string, kv ...any) { Default().log(nil, Error, msg, kv...) }

func GlobalDebugCtx(ctx context.Context, msg string, kv ...any) { Default().log(ctx, Debug, msg, kv...) }
func GlobalInfoCtx(ctx context.Context, msg string, kv ...any)  { Default().log(ctx, Info, msg, kv...) }
func GlobalWarnCtx(ctx context.Context, msg string, kv ...any)  { Default().log(ctx, Warn, msg, kv...) }
func GlobalErrorCtx(ctx context.Context, msg string, kv ...any) { Default().log(ctx, Error, msg, kv...) }
