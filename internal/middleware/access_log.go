package middleware

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

const accessLogFormat = "[${time}] [${method}] ${path} ${status} ${latency} IP: ${clientip} Body: ${reqbody}\n"

// AccessLogs owns the append-only access.log and error.log files.
type AccessLogs struct {
	access *os.File
	errors *os.File
}

// OpenAccessLogs creates dir if needed and opens access.log and error.log for appending.
func OpenAccessLogs(dir string) (*AccessLogs, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	access, err := openAppend(filepath.Join(dir, "access.log"))
	if err != nil {
		return nil, err
	}
	errLog, err := openAppend(filepath.Join(dir, "error.log"))
	if err != nil {
		_ = access.Close()
		return nil, err
	}

	return &AccessLogs{access: access, errors: errLog}, nil
}

func openAppend(path string) (*os.File, error) {
	// #nosec G304: path is built from configured LOG_DIR
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// Handler writes one line per request to access.log and copies lines with status >= 400 to error.log.
func (l *AccessLogs) Handler() fiber.Handler {
	return logger.New(logger.Config{
		Format:        accessLogFormat,
		TimeFormat:    time.RFC3339Nano,
		TimeZone:      "UTC",
		Output:        l.access,
		DisableColors: true,
		CustomTags: map[string]logger.LogFunc{
			"clientip": func(output logger.Buffer, c *fiber.Ctx, _ *logger.Data, _ string) (int, error) {
				return output.WriteString(ClientAddress(c))
			},
			"reqbody": func(output logger.Buffer, c *fiber.Ctx, _ *logger.Data, _ string) (int, error) {
				return output.WriteString(loggableBody(c))
			},
		},
		Done: func(c *fiber.Ctx, logString []byte) {
			if c.Response().StatusCode() >= fiber.StatusBadRequest {
				_, _ = l.errors.Write(logString)
			}
		},
	})
}

// Close closes both log files.
func (l *AccessLogs) Close() error {
	return errors.Join(l.access.Close(), l.errors.Close())
}
