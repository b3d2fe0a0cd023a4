// Package log is the structured request logger. Every entry carries the
// request id, client address and route of the fiber context it was
// written from.
package log

import (
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger atomic.Pointer[zap.Logger]

func init() { logger.Store(zap.NewNop()) }

// L returns the process logger.
func L() *zap.Logger { return logger.Load() }

// Set replaces the process logger; tests use it with an observer core.
func Set(l *zap.Logger) { logger.Store(l) }

// New builds a JSON production logger writing to stdout and, when file is
// set, appending to file as well.
func New(level, file string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", level)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.Sampling = nil
	cfg.OutputPaths = []string{"stdout"}
	if file != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, file)
	}
	return cfg.Build()
}

func requestFields(c *fiber.Ctx, kind, action string) []zap.Field {
	fs := []zap.Field{zap.String("kind", kind), zap.String("action", action)}
	if c == nil {
		return fs
	}
	fs = append(fs,
		zap.String("ip", c.IP()),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
	)
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		fs = append(fs, zap.String("req_id", rid))
	}
	if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
		fs = append(fs, zap.String("user_id", uid))
	}
	return fs
}

func withFields(fs []zap.Field, fields map[string]any) []zap.Field {
	for k, v := range fields {
		fs = append(fs, zap.Any(k, v))
	}
	return fs
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	L().Info(action, withFields(requestFields(c, "info", action), fields)...)
}

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	L().Info(action, withFields(requestFields(c, "audit", action), fields)...)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	L().Warn(action, withFields(requestFields(c, "security", action), fields)...)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	fs := withFields(requestFields(c, "error", action), fields)
	if err != nil {
		fs = append(fs, zap.Error(err))
	}
	L().Error(action, fs...)
}

// Access logs one line per request once the handler chain has run.
func Access() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		fs := requestFields(c, "access", "http.request")
		fs = append(fs, zap.Int64("latency_ms", time.Since(start).Milliseconds()))
		if err != nil {
			fs = append(fs, zap.Error(err))
		}
		L().Info("http.request", fs...)
		return err
	}
}
