package audio

import (
	"context"
	"fmt"
	log "log/slog"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

var percentRe = regexp.MustCompile(`(\d+)\s*%`)

const maxVolume = 150

type sinkInput struct {
	ID      int
	Volume  int
	AppName string
}

type fade struct {
	id   int
	from int
	to   int
}

// Runner executes pactl and returns its standard output.
type Runner func(ctx context.Context, args ...string) ([]byte, error)

func pactl(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "pactl", args...).Output()
}

// Ducker fades the PulseAudio sink inputs of other applications down while
// the assistant listens or speaks, and restores them afterwards. Streams whose
// application.name is in self are left alone.
type Ducker struct {
	mu       sync.Mutex
	active   bool
	self     []string
	original map[int]int
	floor    int
	run      Runner
	sleep    func(time.Duration)
}

func NewDucker(self []string, floor int) *Ducker {
	return newDucker(self, floor, pactl)
}

func newDucker(self []string, floor int, run Runner) *Ducker {
	return &Ducker{
		self:     append([]string(nil), self...),
		original: make(map[int]int),
		floor:    min(max(floor, 0), maxVolume),
		run:      run,
		sleep:    time.Sleep,
	}
}

// Duck scales every foreign stream to factor of its volume, never below the
// floor. Calling it while already ducked does nothing.
func (d *Ducker) Duck(ctx context.Context, factor float64, duration time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active {
		return nil
	}

	inputs, err := d.list(ctx)
	if err != nil {
		return err
	}

	d.original = make(map[int]int)
	var fades []fade
	for _, in := range inputs {
		if d.isSelf(in) {
			continue
		}
		to := math.Round(float64(in.Volume) * factor)
		to = math.Min(math.Max(to, float64(d.floor)), maxVolume)

		d.original[in.ID] = in.Volume
		fades = append(fades, fade{id: in.ID, from: in.Volume, to: int(to)})
	}

	if err := d.fade(ctx, fades, duration); err != nil {
		return err
	}
	d.active = true
	return nil
}

// Restore fades ducked streams back to their original volume. Streams that
// appeared after Duck are not touched.
func (d *Ducker) Restore(ctx context.Context, duration time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return nil
	}

	inputs, err := d.list(ctx)
	if err != nil {
		return err
	}

	var fades []fade
	for _, in := range inputs {
		orig, ok := d.original[in.ID]
		if !ok || d.isSelf(in) {
			continue
		}
		fades = append(fades, fade{id: in.ID, from: in.Volume, to: orig})
	}

	if err := d.fade(ctx, fades, duration); err != nil {
		return err
	}
	d.original = make(map[int]int)
	d.active = false
	return nil
}

// While ducks other streams for the duration of fn. Ducking failures are
// logged and never stop fn from running.
func (d *Ducker) While(ctx context.Context, fn func() error) error {
	if err := d.Duck(ctx, 0.3, 150*time.Millisecond); err != nil {
		log.Debug("Ducking unavailable", "err", err)
	}
	defer func() {
		if err := d.Restore(context.WithoutCancel(ctx), 300*time.Millisecond); err != nil {
			log.Debug("Restore after ducking failed", "err", err)
		}
	}()
	return fn()
}

func (d *Ducker) isSelf(in sinkInput) bool {
	for _, name := range d.self {
		if in.AppName == name {
			return true
		}
	}
	return false
}

func (d *Ducker) list(ctx context.Context) ([]sinkInput, error) {
	out, err := d.run(ctx, "list", "sink-inputs")
	if err != nil {
		return nil, fmt.Errorf("pactl list sink-inputs: %w", err)
	}
	return parseSinkInputs(string(out)), nil
}

func (d *Ducker) setVolume(ctx context.Context, id, percent int) error {
	percent = min(max(percent, 0), maxVolume)
	_, err := d.run(ctx, "set-sink-input-volume", strconv.Itoa(id), fmt.Sprintf("%d%%", percent))
	if err != nil {
		return fmt.Errorf("set volume id=%d: %w", id, err)
	}
	return nil
}

// fade steps every stream linearly from its start to its target volume.
func (d *Ducker) fade(ctx context.Context, fades []fade, duration time.Duration) error {
	if len(fades) == 0 {
		return nil
	}

	const minStep = 10 * time.Millisecond

	steps := max(int(duration/minStep), 1)
	step := duration / time.Duration(steps)

	for i := 1; i <= steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		frac := float64(i) / float64(steps)
		for _, f := range fades {
			v := int(math.Round(float64(f.from) + float64(f.to-f.from)*frac))
			if err := d.setVolume(ctx, f.id, v); err != nil {
				return err
			}
		}

		if i < steps {
			d.sleep(step)
		}
	}
	return nil
}

// parseSinkInputs reads the output of `pactl list sink-inputs`.
func parseSinkInputs(text string) []sinkInput {
	parts := strings.Split(text, "Sink Input #")

	var res []sinkInput
	for _, block := range parts[1:] {
		idStr, body, ok := strings.Cut(block, "\n")
		if !ok {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(idStr))
		if err != nil {
			continue
		}

		in := sinkInput{ID: id}
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)

			switch {
			case strings.HasPrefix(line, "Volume:") && in.Volume == 0:
				if m := percentRe.FindStringSubmatch(line); m != nil {
					in.Volume, _ = strconv.Atoi(m[1])
				}
			case strings.HasPrefix(line, "application.name =") && in.AppName == "":
				_, quoted, _ := strings.Cut(line, `"`)
				in.AppName, _, _ = strings.Cut(quoted, `"`)
			}
		}

		if in.Volume == 0 && in.AppName == "" {
			continue
		}
		res = append(res, in)
	}
	return res
}
