package batch

import (
	"sync"
	"time"
)

// MaxLogLines 每个站点结果保留的最近日志行数
const MaxLogLines = 100

// logBuffer 保留最近的进度讯息,每行前缀 [15:04:05]
type logBuffer struct {
	mu    sync.Mutex
	now   func() time.Time
	limit int
	lines []string
}

func newLogBuffer(limit int, now func() time.Time) *logBuffer {
	return &logBuffer{now: now, limit: limit}
}

func (b *logBuffer) add(msg string) {
	line := "[" + b.now().Format(time.TimeOnly) + "] " + msg
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if over := len(b.lines) - b.limit; over > 0 {
		b.lines = append(b.lines[:0], b.lines[over:]...)
	}
}

func (b *logBuffer) snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}
