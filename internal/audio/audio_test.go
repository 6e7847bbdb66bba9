package audio

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(level float32, n int) []float32 {
	f := make([]float32, n)
	for i := range f {
		f[i] = level
	}
	return f
}

func TestSegmenterCutsAfterSilence(t *testing.T) {
	r := NewRecorder()
	seg := r.segmenter()

	quiet, loud := frame(0.001, r.FrameSize), frame(0.2, r.FrameSize)

	for range 5 {
		require.False(t, seg.feed(quiet))
	}
	assert.Empty(t, seg.out)

	for range 10 {
		require.False(t, seg.feed(loud))
	}

	// 600ms of 20ms frames.
	stopped := 0
	for i := 1; i <= 30; i++ {
		if seg.feed(quiet) {
			stopped = i
			break
		}
	}
	assert.Equal(t, 30, stopped)
	assert.Len(t, seg.out, (10+29)*r.FrameSize)
}

func TestSegmenterLimits(t *testing.T) {
	r := NewRecorder()
	r.Wait = 100 * time.Millisecond
	seg := r.segmenter()

	quiet := frame(0, r.FrameSize)
	n := 0
	for !seg.feed(quiet) {
		n++
	}
	assert.Equal(t, 4, n)
	assert.Empty(t, seg.out)

	r = NewRecorder()
	r.MaxLength = 200 * time.Millisecond
	seg = r.segmenter()
	loud := frame(0.5, r.FrameSize)
	n = 1
	for !seg.feed(loud) {
		n++
	}
	assert.Equal(t, 10, n)
}

const sinkInputs = `Sink Input #41
	Driver: protocol-native.c
	Volume: front-left: 65536 / 100% / 0.00 dB,   front-right: 65536 / 100% / 0.00 dB
	Properties:
		application.name = "Firefox"
Sink Input #42
	Volume: front-left: 32768 /  50% / -18.06 dB
	Properties:
		application.name = "murmur"
Sink Input #bogus
	Volume: 10%
`

func TestParseSinkInputs(t *testing.T) {
	got := parseSinkInputs(sinkInputs)
	assert.Equal(t, []stream{
		{ID: 41, Volume: 100, AppName: "Firefox"},
		{ID: 42, Volume: 50, AppName: "murmur"},
	}, got)

	assert.Empty(t, parseSinkInputs("nothing playing"))
}

type fakePactl struct {
	list string
	sets []string
	err  error
}

func (f *fakePactl) run(_ context.Context, args ...string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if args[0] == "list" {
		return []byte(f.list), nil
	}
	f.sets = append(f.sets, strings.Join(args[1:], " "))
	return nil, nil
}

func TestDuckAndRestore(t *testing.T) {
	p := &fakePactl{list: sinkInputs}
	d := NewDucker([]string{"murmur"}, 0.3, 10)
	d.run = p.run
	d.duration = 0

	require.NoError(t, d.Duck(context.Background()))
	assert.Equal(t, []string{"41 30%"}, p.sets)

	// Second duck is a no-op.
	require.NoError(t, d.Duck(context.Background()))
	assert.Len(t, p.sets, 1)

	p.list = strings.Replace(sinkInputs, "100%", "30%", 1)
	require.NoError(t, d.Restore(context.Background()))
	assert.Equal(t, []string{"41 30%", "41 100%"}, p.sets)

	require.NoError(t, d.Restore(context.Background()))
	assert.Len(t, p.sets, 2)
}

func TestDuckFloorAndFailure(t *testing.T) {
	p := &fakePactl{list: sinkInputs}
	d := NewDucker(nil, 0.01, 20)
	d.run = p.run
	d.duration = 0

	require.NoError(t, d.Duck(context.Background()))
	assert.ElementsMatch(t, []string{"41 20%", "42 20%"}, p.sets)

	d = NewDucker(nil, 0.5, 0)
	d.run = (&fakePactl{err: errors.New("no pulse")}).run
	err := d.Duck(context.Background())
	assert.ErrorContains(t, err, "pactl list sink-inputs")
	assert.False(t, d.active)
}

func TestFadeSteps(t *testing.T) {
	p := &fakePactl{list: "Sink Input #1\n\tVolume: 100%\n"}
	d := NewDucker(nil, 0.5, 0)
	d.run = p.run
	d.duration = 30 * time.Millisecond

	require.NoError(t, d.Duck(context.Background()))
	assert.Equal(t, []string{"1 83%", "1 67%", "1 50%"}, p.sets)
}
