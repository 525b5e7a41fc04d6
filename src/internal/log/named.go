package log

// Logger is a logging handle bound to one component. Components keep it as a
// field instead of reaching for a package-level name lookup.
type Logger struct {
	component string
}

// Named returns a Logger that tags every record with component.
func Named(component string) *Logger {
	return &Logger{component: component}
}

// Component returns the name the logger was created with.
func (l *Logger) Component() string {
	if l == nil {
		return ""
	}
	return l.component
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	logMessage(levelDebug, l.Component(), format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	logMessage(levelInfo, l.Component(), format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	logMessage(levelWarn, l.Component(), format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	logMessage(levelError, l.Component(), format, args...)
}
