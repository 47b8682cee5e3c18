// Package notify delivers pipeline lifecycle events to interested
// channels. Delivery is best effort; a failed notification never fails
// the run that produced it.
package notify

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Status is the lifecycle phase an event reports.
type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Event describes one pipeline lifecycle notification.
type Event struct {
	Status    Status    `json:"status"`
	PeriodKey string    `json:"period_key"`
	Provider  string    `json:"provider"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

// Notifier delivers events to a channel such as a log or a webhook.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// LogNotifier writes events as single lines to a writer.
type LogNotifier struct {
	Out io.Writer
}

func NewLogNotifier(out io.Writer) *LogNotifier {
	return &LogNotifier{Out: out}
}

func (n *LogNotifier) Notify(_ context.Context, event Event) error {
	line := fmt.Sprintf("[%s] run %s period=%s provider=%s",
		event.At.UTC().Format(time.RFC3339), event.Status, event.PeriodKey, event.Provider)
	if event.Detail != "" {
		line += " detail=" + event.Detail
	}
	_, err := fmt.Fprintln(n.Out, line)
	return err
}
