// Package log provides simple leveled logging for zyro.
//
// Console output is colored and printf-style: DEBUG (verbose mode only),
// INFO, WARN and ERROR. Errors go to stderr, everything else to stdout unless
// SetForceStdErr is used.
//
// Components that log get a handle from Named and keep it as a field:
//
//	logger := log.Named("StateStore")
//	logger.Infof("Saved state to %s", path)
//
// EnableFileOutput additionally mirrors every record as JSON lines into a
// size-rotated file:
//
//	closeFn, err := log.EnableFileOutput("./logs", log.FileOptions{})
//	if err != nil {
//	    log.Fatalf("Failed to open log file: %v", err)
//	}
//	defer closeFn()
package log
