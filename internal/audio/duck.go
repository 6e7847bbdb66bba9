package audio

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

var percentRe = regexp.MustCompile(`(\d+)\s*%`)

const maxVolume = 150

type stream struct {
	ID      int
	Volume  int
	AppName string
}

type fade struct {
	id, from, to int
}

// Ducker lowers the volume of other applications' PulseAudio streams while
// the assistant listens and restores them afterwards. Streams whose
// application.name is in self are left alone.
type Ducker struct {
	self      []string
	factor    float64
	minVolume int
	duration  time.Duration
	run       func(ctx context.Context, args ...string) ([]byte, error)

	mu       sync.Mutex
	active   bool
	original map[int]int
}

func NewDucker(self []string, factor float64, minVolume int) *Ducker {
	return &Ducker{
		self:      slices.Clone(self),
		factor:    factor,
		minVolume: clampVolume(minVolume),
		duration:  150 * time.Millisecond,
		run:       pactl,
		original:  map[int]int{},
	}
}

func (d *Ducker) Duck(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active {
		return nil
	}

	streams, err := d.streams(ctx)
	if err != nil {
		return err
	}

	d.original = map[int]int{}
	var fades []fade
	for _, s := range streams {
		to := int(math.Round(float64(s.Volume) * d.factor))
		to = clampVolume(max(to, d.minVolume))
		d.original[s.ID] = s.Volume
		fades = append(fades, fade{id: s.ID, from: s.Volume, to: to})
	}

	if err := d.fade(ctx, fades); err != nil {
		return err
	}
	d.active = true
	return nil
}

// Restore fades ducked streams back. Streams that appeared after Duck are
// not touched.
func (d *Ducker) Restore(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return nil
	}

	streams, err := d.streams(ctx)
	if err != nil {
		return err
	}

	var fades []fade
	for _, s := range streams {
		if orig, ok := d.original[s.ID]; ok {
			fades = append(fades, fade{id: s.ID, from: s.Volume, to: orig})
		}
	}

	if err := d.fade(ctx, fades); err != nil {
		return err
	}
	d.original = map[int]int{}
	d.active = false
	return nil
}

func (d *Ducker) streams(ctx context.Context) ([]stream, error) {
	out, err := d.run(ctx, "list", "sink-inputs")
	if err != nil {
		return nil, fmt.Errorf("pactl list sink-inputs: %w", err)
	}

	var others []stream
	for _, s := range parseSinkInputs(string(out)) {
		if !slices.Contains(d.self, s.AppName) {
			others = append(others, s)
		}
	}
	return others, nil
}

func (d *Ducker) fade(ctx context.Context, fades []fade) error {
	if len(fades) == 0 {
		return nil
	}

	const stepDur = 10 * time.Millisecond
	steps := max(int(d.duration/stepDur), 1)

	for i := 1; i <= steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		frac := float64(i) / float64(steps)
		for _, f := range fades {
			v := int(math.Round(float64(f.from) + float64(f.to-f.from)*frac))
			if _, err := d.run(ctx, "set-sink-input-volume", strconv.Itoa(f.id), fmt.Sprintf("%d%%", clampVolume(v))); err != nil {
				return fmt.Errorf("set volume id=%d: %w", f.id, err)
			}
		}
		if i < steps {
			time.Sleep(d.duration / time.Duration(steps))
		}
	}
	return nil
}

func parseSinkInputs(text string) []stream {
	parts := strings.Split(text, "Sink Input #")
	var res []stream

	for _, block := range parts[1:] {
		idLine, body, ok := strings.Cut(block, "\n")
		if !ok {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(idLine))
		if err != nil {
			continue
		}

		s := stream{ID: id}
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)

			if strings.HasPrefix(line, "Volume:") && s.Volume == 0 {
				if m := percentRe.FindStringSubmatch(line); m != nil {
					s.Volume, _ = strconv.Atoi(m[1])
				}
			}
			if rest, ok := strings.CutPrefix(line, "application.name = "); ok && s.AppName == "" {
				s.AppName = strings.Trim(rest, `"`)
			}
		}

		if s.Volume == 0 && s.AppName == "" {
			continue
		}
		res = append(res, s)
	}

	return res
}

func clampVolume(v int) int {
	return min(max(v, 0), maxVolume)
}

func pactl(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "pactl", args...).Output()
}
