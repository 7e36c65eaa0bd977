package application

import (
	"context"
	"log/slog"
	"sync"
)

// NoticeKind is the tone of a user-facing notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
	NoticeError   NoticeKind = "error"
)

// Notice is a single modal acknowledgment shown to the user.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, notice Notice)

func (f NotifierFunc) Notify(ctx context.Context, notice Notice) {
	f(ctx, notice)
}

// LogNotifier writes notices to a logger. Used when no UI is attached.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier backed by logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, notice Notice) {
	level := slog.LevelInfo
	if notice.Kind == NoticeError {
		level = slog.LevelWarn
	}
	n.logger.Log(ctx, level, notice.Title, "kind", notice.Kind, "message", notice.Message)
}

// RecordingNotifier keeps every notice. Adapters read it back to render the
// outcome of a command.
type RecordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify records notice. When ctx carries a recorder from WithNoticeRecorder,
// the notice goes there instead, keeping concurrent callers apart.
func (n *RecordingNotifier) Notify(ctx context.Context, notice Notice) {
	if scoped, ok := ctx.Value(noticeRecorderKey{}).(*RecordingNotifier); ok && scoped != n {
		n = scoped
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

// Notices returns a copy of the recorded notices.
func (n *RecordingNotifier) Notices() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notice, len(n.notices))
	copy(out, n.notices)
	return out
}

// Drain returns the recorded notices and forgets them.
func (n *RecordingNotifier) Drain() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.notices
	n.notices = nil
	return out
}

type noticeRecorderKey struct{}

// WithNoticeRecorder returns a context whose notices are recorded in rec
// rather than in the shared RecordingNotifier.
func WithNoticeRecorder(ctx context.Context, rec *RecordingNotifier) context.Context {
	return context.WithValue(ctx, noticeRecorderKey{}, rec)
}
