package logging

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// JSON records use short keys and UTC RFC 3339 timestamps. Durations are
// written as fractional seconds so log processors can aggregate them.
const (
	jsonTimeKey   = "ts"
	jsonLevelKey  = "level"
	jsonMsgKey    = "msg"
	jsonSourceKey = "caller"
)

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   addSource,
		ReplaceAttr: replaceJSONAttr,
	})
}

func replaceJSONAttr(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) == 0 {
		switch attr.Key {
		case slog.TimeKey:
			if attr.Value.Kind() == slog.KindTime {
				return slog.String(jsonTimeKey, attr.Value.Time().UTC().Format(time.RFC3339))
			}
			attr.Key = jsonTimeKey
			return attr
		case slog.LevelKey:
			return slog.String(jsonLevelKey, strings.ToLower(attr.Value.String()))
		case slog.MessageKey:
			attr.Key = jsonMsgKey
			return attr
		case slog.SourceKey:
			src, ok := attr.Value.Any().(*slog.Source)
			if !ok || src == nil || src.File == "" {
				return slog.Attr{}
			}
			return slog.String(jsonSourceKey, fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
	}
	if attr.Value.Kind() == slog.KindDuration {
		return slog.Float64(attr.Key, attr.Value.Duration().Seconds())
	}
	return attr
}
