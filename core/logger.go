package core

// Logger is the application logger.
// args may contain an error, a map[string]interface{} of extra fields and the user the entry relates to.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Fields is a shorthand for extra log fields.
type Fields = map[string]interface{}
