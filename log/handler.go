package log

import (
	"bytes"
	"io"
	"sync"

	"go.uber.org/zap"
)

// ConsoleSink receives one line of guest console output per call.
type ConsoleSink func(line string)

// ZapSink returns a sink that logs every line at info level with a "message" field.
func ZapSink(l *zap.Logger) ConsoleSink {
	if l == nil {
		l = Logger()
	}
	l = l.Named("guest")
	return func(line string) {
		l.Info("guest console", zap.String("message", line))
	}
}

// WriterSink returns a sink that writes every line to w followed by a newline.
// Writes are serialized, so one writer can be shared by several engines.
func WriterSink(w io.Writer) ConsoleSink {
	var mu sync.Mutex
	return func(line string) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = io.WriteString(w, line+"\n")
	}
}

// LineWriter is an io.Writer that buffers output and hands every complete
// line to a ConsoleSink. Engines built with host.WithStdoutToConsole route
// guest stdout through one of these.
type LineWriter struct {
	sink ConsoleSink
	mu   sync.Mutex
	buf  bytes.Buffer
}

// NewLineWriter creates a LineWriter feeding sink.
func NewLineWriter(sink ConsoleSink) *LineWriter {
	return &LineWriter{sink: sink}
}

// Write implements io.Writer.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(w.buf.Next(i + 1))
		w.sink(line[:len(line)-1])
	}
	return len(p), nil
}

// Flush emits any buffered partial line.
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.sink(w.buf.String())
		w.buf.Reset()
	}
}
