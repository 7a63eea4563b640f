package pantryapp

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ActionLogger records each user action dispatched by the controller.
type ActionLogger interface {
	LogAction(action ActionLog) error
}

// NewActionLogFilePath returns a timestamped log file path under dir.
func NewActionLogFilePath(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("%d.pantry.json", time.Now().Unix()))
}

// ActionLog represents a single dispatched action and the list it left behind.
type ActionLog struct {
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Input     string    `json:"input,omitempty"`
	Items     int       `json:"items"`
	Error     string    `json:"error,omitempty"`
}

// FileActionLogger accumulates actions and writes them out on Flush.
type FileActionLogger struct {
	actions []ActionLog
	writer  io.Writer
}

func NewFileActionLogger(writer io.Writer) *FileActionLogger {
	return &FileActionLogger{
		actions: make([]ActionLog, 0),
		writer:  writer,
	}
}

// LogAction buffers the action (does not flush immediately)
func (l *FileActionLogger) LogAction(action ActionLog) error {
	l.actions = append(l.actions, action)
	return nil
}

// Flush writes all buffered actions to the writer as one JSON document.
func (l *FileActionLogger) Flush() error {
	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"pantry_session": map[string]any{
			"timestamp": time.Now(),
			"actions":   l.actions,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal action log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write action log: %w", err)
	}

	l.actions = l.actions[:0]
	return nil
}

type NoOpActionLogger struct{}

func NewNoOpActionLogger() *NoOpActionLogger {
	return &NoOpActionLogger{}
}

func (nop *NoOpActionLogger) LogAction(action ActionLog) error {
	return nil
}

// StdoutActionLogger writes each action as a JSON line (for Lambda/CloudWatch).
type StdoutActionLogger struct {
	out io.Writer
}

func NewStdoutActionLogger() *StdoutActionLogger {
	return &StdoutActionLogger{out: os.Stdout}
}

func (l *StdoutActionLogger) LogAction(action ActionLog) error {
	data, err := json.Marshal(action)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(l.out, string(data))
	return err
}
