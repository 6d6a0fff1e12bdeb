package logging

import (
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewFileWriter returns a size-rotated log file: 10 MB per file, the ten
// most recent backups kept.
func NewFileWriter(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 10,
		LocalTime:  true,
	}
}
