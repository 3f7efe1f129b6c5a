package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// Logger interface for window-command and control-channel operations
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// DefaultLogger provides a simple logger implementation
type DefaultLogger struct{}

// NewDefaultLogger creates a new default logger instance
func NewDefaultLogger() Logger {
	return &DefaultLogger{}
}

// logEntry represents a structured log entry
type logEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
}

// fieldsToMap converts the variadic fields slice to a map.
// Expected format: key1, value1, key2, value2, ...
func fieldsToMap(fields []interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	for i := 0; i < len(fields); i += 2 {
		if i+1 >= len(fields) {
			// Odd number of fields, add the last one with an index key
			result[fmt.Sprintf("field_%d", i/2)] = fields[i]
			break
		}
		if key, ok := fields[i].(string); ok {
			result[key] = fields[i+1]
		} else {
			// If key is not a string, use index as key
			result[fmt.Sprintf("field_%d", i/2)] = fields[i]
			result[fmt.Sprintf("field_%d_value", i/2)] = fields[i+1]
		}
	}

	return result
}

// logStructured logs a message with structured JSON format
func (l *DefaultLogger) logStructured(level, msg string, fields []interface{}) {
	entry := logEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Message:   msg,
		Fields:    fieldsToMap(fields),
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		// Fields contained something unmarshalable; log a flattened fallback
		entry.Fields = map[string]interface{}{
			"original_fields": fmt.Sprintf("%v", fields),
			"marshal_error":   err.Error(),
		}
		if jsonBytes, err = json.Marshal(entry); err != nil {
			log.Printf("[%s] %s %v", level, msg, fields)
			return
		}
	}

	log.Println(string(jsonBytes))
}

func (l *DefaultLogger) Debug(msg string, fields ...interface{}) {
	l.logStructured("DEBUG", msg, fields)
}

func (l *DefaultLogger) Info(msg string, fields ...interface{}) {
	l.logStructured("INFO", msg, fields)
}

func (l *DefaultLogger) Warn(msg string, fields ...interface{}) {
	l.logStructured("WARN", msg, fields)
}

func (l *DefaultLogger) Error(msg string, fields ...interface{}) {
	l.logStructured("ERROR", msg, fields)
}

// WindowFault is the classified window-error surface the logger understands
// (declared here to avoid a circular import with the errors package)
type WindowFault interface {
	Error() string
	GetCode() string
	GetLabel() string
	GetTimestamp() time.Time
}

// LogWindowError logs a failed window command with its classification
func LogWindowError(logger Logger, err error, operation string, context map[string]interface{}) {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	if fault, ok := err.(WindowFault); ok {
		fields := []interface{}{
			"operation", operation,
			"error_code", fault.GetCode(),
			"timestamp", fault.GetTimestamp(),
		}
		if label := fault.GetLabel(); label != "" {
			fields = append(fields, "window_label", label)
		}
		for k, v := range context {
			fields = append(fields, k, v)
		}
		logger.Error(fmt.Sprintf("Window command failed: %s", err.Error()), fields...)
		return
	}

	fields := []interface{}{
		"operation", operation,
		"error_type", fmt.Sprintf("%T", err),
	}
	for k, v := range context {
		fields = append(fields, k, v)
	}
	logger.Error(fmt.Sprintf("Unexpected error: %s", err.Error()), fields...)
}

// LogWindowOperation logs completed window commands for monitoring
func LogWindowOperation(logger Logger, operation string, duration time.Duration, context map[string]interface{}) {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	fields := []interface{}{
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
	}
	for k, v := range context {
		fields = append(fields, k, v)
	}

	logger.Info(fmt.Sprintf("Window command completed: %s", operation), fields...)
}
