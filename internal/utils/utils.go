package utils

import (
	"strings"

	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
)

var Log = logrus.New()

func SetLogLevel(level string) {
	// We are not using logrus' trace and panic levels
	switch strings.ToLower(level) {
	case "debug":
		Log.SetLevel(log.DebugLevel)
	case "info":
		Log.SetLevel(log.InfoLevel)
	case "warning", "warn":
		Log.SetLevel(log.WarnLevel)
	case "error":
		Log.SetLevel(log.ErrorLevel)
	case "fatal":
		Log.SetLevel(log.FatalLevel)
	default:
		log.Fatal("Bad error level string")
	}
}

// SanitizeName makes a dealer name safe for use in a filename.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_")
	return replacer.Replace(name)
}

// TruncateSheetName cuts a string down to the 31-character Excel sheet
// name limit.
func TruncateSheetName(name string) string {
	const maxSheetName = 31
	if len(name) > maxSheetName {
		return name[:maxSheetName]
	}
	return name
}
