package tui

import (
	"bytes"
	"strings"
	"sync"
)

// DefaultLogLines bounds the log panel history.
const DefaultLogLines = 500

// LogBuffer is an io.Writer that keeps the most recent log lines for the log
// panel. It is written from any goroutine and read by the render loop.
type LogBuffer struct {
	mu      sync.Mutex
	limit   int
	lines   []string
	partial []byte
}

// NewLogBuffer returns a buffer keeping at most limit lines.
func NewLogBuffer(limit int) *LogBuffer {
	if limit <= 0 {
		limit = DefaultLogLines
	}
	return &LogBuffer{limit: limit}
}

// Write splits p into lines. A trailing fragment waits for its newline.
func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data := append(b.partial, p...)
	for {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimRight(string(data[:idx]), "\r")
		data = data[idx+1:]
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.lines = append(b.lines, line)
	}
	b.partial = append([]byte(nil), data...)
	if over := len(b.lines) - b.limit; over > 0 {
		b.lines = append([]string(nil), b.lines[over:]...)
	}
	return len(p), nil
}

// Tail returns up to n of the newest lines, oldest first.
func (b *LogBuffer) Tail(n int) []string {
	if b == nil || n <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	start := max(0, len(b.lines)-n)
	return append([]string(nil), b.lines[start:]...)
}

// Len returns the number of complete lines held.
func (b *LogBuffer) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}
