package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// hlogLevels maps hlog levels onto slog levels. Trace collapses into debug
// and notice into info; fatal logs at error without exiting, process exit
// stays with the caller.
var hlogLevels = map[hlog.Level]slog.Level{
	hlog.LevelTrace:  slog.LevelDebug,
	hlog.LevelDebug:  slog.LevelDebug,
	hlog.LevelInfo:   slog.LevelInfo,
	hlog.LevelNotice: slog.LevelInfo,
	hlog.LevelWarn:   slog.LevelWarn,
	hlog.LevelError:  slog.LevelError,
	hlog.LevelFatal:  slog.LevelError,
}

// HertzSlog routes Hertz framework logs through a slog.Logger so the server
// emits one uniform log stream.
type HertzSlog struct {
	logger *slog.Logger
}

// NewHertzSlog wraps logger as an hlog.FullLogger.
func NewHertzSlog(logger *slog.Logger) *HertzSlog {
	return &HertzSlog{logger: logger}
}

func (h *HertzSlog) log(level hlog.Level, v ...interface{}) {
	h.logger.Log(context.Background(), hlogLevels[level], fmt.Sprint(v...))
}

func (h *HertzSlog) logf(level hlog.Level, format string, v ...interface{}) {
	h.logger.Log(context.Background(), hlogLevels[level], fmt.Sprintf(format, v...))
}

func (h *HertzSlog) ctxLogf(ctx context.Context, level hlog.Level, format string, v ...interface{}) {
	h.logger.Log(ctx, hlogLevels[level], fmt.Sprintf(format, v...))
}

func (h *HertzSlog) Trace(v ...interface{})  { h.log(hlog.LevelTrace, v...) }
func (h *HertzSlog) Debug(v ...interface{})  { h.log(hlog.LevelDebug, v...) }
func (h *HertzSlog) Info(v ...interface{})   { h.log(hlog.LevelInfo, v...) }
func (h *HertzSlog) Notice(v ...interface{}) { h.log(hlog.LevelNotice, v...) }
func (h *HertzSlog) Warn(v ...interface{})   { h.log(hlog.LevelWarn, v...) }
func (h *HertzSlog) Error(v ...interface{})  { h.log(hlog.LevelError, v...) }
func (h *HertzSlog) Fatal(v ...interface{})  { h.log(hlog.LevelFatal, v...) }

func (h *HertzSlog) Tracef(format string, v ...interface{})  { h.logf(hlog.LevelTrace, format, v...) }
func (h *HertzSlog) Debugf(format string, v ...interface{})  { h.logf(hlog.LevelDebug, format, v...) }
func (h *HertzSlog) Infof(format string, v ...interface{})   { h.logf(hlog.LevelInfo, format, v...) }
func (h *HertzSlog) Noticef(format string, v ...interface{}) { h.logf(hlog.LevelNotice, format, v...) }
func (h *HertzSlog) Warnf(format string, v ...interface{})   { h.logf(hlog.LevelWarn, format, v...) }
func (h *HertzSlog) Errorf(format string, v ...interface{})  { h.logf(hlog.LevelError, format, v...) }
func (h *HertzSlog) Fatalf(format string, v ...interface{})  { h.logf(hlog.LevelFatal, format, v...) }

func (h *HertzSlog) CtxTracef(ctx context.Context, format string, v ...interface{}) {
	h.ctxLogf(ctx, hlog.LevelTrace, format, v...)
}

func (h *HertzSlog) CtxDebugf(ctx context.Context, format string, v ...interface{}) {
	h.ctxLogf(ctx, hlog.LevelDebug, format, v...)
}

func (h *HertzSlog) CtxInfof(ctx context.Context, format string, v ...interface{}) {
	h.ctxLogf(ctx, hlog.LevelInfo, format, v...)
}

func (h *HertzSlog) CtxNoticef(ctx context.Context, format string, v ...interface{}) {
	h.ctxLogf(ctx, hlog.LevelNotice, format, v...)
}

func (h *HertzSlog) CtxWarnf(ctx context.Context, format string, v ...interface{}) {
	h.ctxLogf(ctx, hlog.LevelWarn, format, v...)
}

func (h *HertzSlog) CtxErrorf(ctx context.Context, format string, v ...interface{}) {
	h.ctxLogf(ctx, hlog.LevelError, format, v...)
}

func (h *HertzSlog) CtxFatalf(ctx context.Context, format string, v ...interface{}) {
	h.ctxLogf(ctx, hlog.LevelFatal, format, v...)
}

// SetLevel is a no-op; the slog handler level is fixed at setup.
func (h *HertzSlog) SetLevel(level hlog.Level) {}

// SetOutput is a no-op; the slog handler writer is fixed at setup.
func (h *HertzSlog) SetOutput(writer io.Writer) {}
