package service

import (
	"os"
	"path/filepath"

	l "github.com/sirupsen/logrus"
)

const logFilename = "euterpe.log"

// setupLogging directs logrus output to logDir/euterpe.log, creating the
// file if needed. Unlike the teacher, euterpe doesn't assume a dedicated
// system service account to chown the file to - it just inherits whatever
// user the process runs as
func setupLogging(logDir, logLevel string) error {
	level, err := l.ParseLevel(logLevel)
	if err != nil {
		return err
	}

	path := filepath.Join(logDir, logFilename)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	l.SetOutput(f)
	l.SetLevel(level)
	l.SetFormatter(&l.TextFormatter{FullTimestamp: true})
	return nil
}
