package logger

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Configure sets up the package-level charm log. Debug turns on timestamps
// and caller info; otherwise only warnings and errors are shown.
func Configure(debug bool) {
	log.SetOutput(os.Stderr)
	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		log.SetReportCaller(true)
		log.SetTimeFormat(time.TimeOnly)
		return
	}
	log.SetLevel(log.WarnLevel)
	log.SetReportTimestamp(false)
	log.SetReportCaller(false)
}
