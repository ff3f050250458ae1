package notify

import (
	"context"
	"fmt"
	"os/exec"
)

// Desktop posts short-lived notifications through notify-send.
type Desktop struct {
	App string
	run func(ctx context.Context, name string, args ...string) error
}

func NewDesktop(app string) *Desktop {
	return &Desktop{App: app, run: run}
}

func (d *Desktop) Notify(ctx context.Context, summary, body string) error {
	args := []string{"--app-name", d.App, "--expire-time", "3000", summary}
	if body != "" {
		args = append(args, body)
	}
	if err := d.run(ctx, "notify-send", args...); err != nil {
		return fmt.Errorf("notify-send: %w", err)
	}
	return nil
}

func run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}
