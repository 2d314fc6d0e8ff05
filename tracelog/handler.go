package tracelog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// textHandler renders records as
// "[YYYY-MM-DD HH:MM:SS] [LEVEL] <component>: <message>", the flat,
// grep-friendly line shape this driver's logs use everywhere, on an
// embedded target with no log aggregator reading structured fields.
type textHandler struct {
	w   io.Writer
	min *slog.LevelVar
	mu  sync.Mutex
}

func (h *textHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min.Level()
}

func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	var component, levelText string
	r.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "component":
			component = a.Value.String()
		case "level":
			levelText = a.Value.String()
		}
		return true
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.w, "[%s] [%s] %s: %s\n",
		r.Time.Format("2006-01-02 15:04:05"), levelText, component, r.Message)
	return err
}

func (h *textHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *textHandler) WithGroup(_ string) slog.Handler      { return h }
