package intercept

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

// streamRecorder wraps a provider's SSE response body. Every byte is
// forwarded to the caller unchanged; in passing, text fragments recognized
// by the descriptor's chunk rules are accumulated. The accumulated text is
// flushed exactly once per stream, on EOF or on Close, whichever comes
// first, so abandoning a stream mid-iteration still records what was
// produced up to that point.
type streamRecorder struct {
	body  io.ReadCloser
	rules []ChunkRule
	flush func(assistant string)

	line bytes.Buffer
	text strings.Builder
	once sync.Once
}

func newStreamRecorder(body io.ReadCloser, rules []ChunkRule, flush func(string)) *streamRecorder {
	return &streamRecorder{
		body:  body,
		rules: rules,
		flush: flush,
	}
}

// Read forwards the underlying read verbatim and scans the bytes it saw.
func (s *streamRecorder) Read(p []byte) (int, error) {
	n, err := s.body.Read(p)
	if n > 0 {
		s.scan(p[:n])
	}
	if err == io.EOF {
		s.finish()
	}
	return n, err
}

// Close flushes the partial accumulation before releasing the body, which
// is the guaranteed-cleanup path for abandoned streams.
func (s *streamRecorder) Close() error {
	s.finish()
	return s.body.Close()
}

// scan reassembles SSE lines across arbitrary read boundaries.
func (s *streamRecorder) scan(b []byte) {
	for _, c := range b {
		if c == '\n' {
			s.processLine(strings.TrimRight(s.line.String(), "\r"))
			s.line.Reset()
			continue
		}
		s.line.WriteByte(c)
	}
}

// processLine extracts text from one SSE data line. Event names, comments,
// keep-alives, and the [DONE] sentinel carry no text and are skipped.
func (s *streamRecorder) processLine(line string) {
	if !strings.HasPrefix(line, "data:") {
		return
	}
	payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if payload == "" || payload == "[DONE]" {
		return
	}
	s.text.WriteString(chunkText(s.rules, []byte(payload)))
}

func (s *streamRecorder) finish() {
	s.once.Do(func() {
		// A final line without trailing newline can still carry data.
		if s.line.Len() > 0 {
			s.processLine(strings.TrimRight(s.line.String(), "\r"))
			s.line.Reset()
		}
		s.flush(s.text.String())
	})
}
