// +build windows

// Package logger is a stand-in for the UNIX syslog wrapper on
// platforms where log/syslog doesn't exist, so that cmd/eessh can log
// unconditionally without per-platform call sites.
package logger

import (
	"os"
)

type Priority = int
type Writer = os.File

const (
	// Severity.
	LOG_EMERG Priority = iota
	LOG_ALERT
	LOG_CRIT
	LOG_ERR
	LOG_WARNING
	LOG_NOTICE
	LOG_INFO
	LOG_DEBUG
)

const (
	// Facility. This client only ever logs under LOG_USER.
	LOG_USER Priority = 1 << 3
)

func New(flags Priority, tag string) (w *Writer, e error) {
	return os.Stderr, nil
}

func LogClose() error {
	return nil
}
func LogDebug(s string) error {
	return nil
}
func LogErr(s string) error {
	return nil
}
func LogInfo(s string) error {
	return nil
}
func LogWarning(s string) error {
	return nil
}
