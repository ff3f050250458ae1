// Package opener hands URLs and files to the desktop's default application.
package opener

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

type Opener interface {
	Open(ctx context.Context, target string) error
}

type System struct {
	goos string
	run  func(ctx context.Context, name string, args ...string) error
}

func NewSystem() *System {
	return &System{goos: runtime.GOOS, run: start}
}

func (s *System) Open(ctx context.Context, target string) error {
	if target == "" {
		return errors.New("empty target")
	}

	name, args := command(s.goos, target)
	if err := s.run(ctx, name, args...); err != nil {
		return fmt.Errorf("%s %s: %w", name, target, err)
	}
	return nil
}

func command(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}

// start launches the viewer without waiting for it to exit. The viewer must
// outlive ctx, so ctx only gates the launch.
func start(ctx context.Context, name string, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}
