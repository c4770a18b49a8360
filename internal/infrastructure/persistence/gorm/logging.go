package gorm

import (
	"strings"

	"gorm.io/gorm/logger"
)

// LogLevel maps a configured level name to a GORM logger level. Unknown
// names fall back to Warn.
func LogLevel(name string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info", "debug":
		return logger.Info
	default:
		return logger.Warn
	}
}
