package audio

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

var ErrNoSpeech = errors.New("no speech recorded")

// Recorder captures one utterance from the default microphone as 16 kHz mono
// float32 PCM, stopping after a stretch of silence.
type Recorder struct {
	SampleRate int
	FrameSize  int
	SilenceRMS float64
	Silence    time.Duration
	MaxLength  time.Duration
	// Wait bounds how long to wait for speech to start.
	Wait time.Duration
}

func NewRecorder() *Recorder {
	return &Recorder{
		SampleRate: 16000,
		FrameSize:  320, // 20ms
		SilenceRMS: 0.015,
		Silence:    600 * time.Millisecond,
		MaxLength:  10 * time.Second,
		Wait:       8 * time.Second,
	}
}

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

func (r *Recorder) Record(ctx context.Context) ([]float32, error) {
	buf := make([]float32, r.FrameSize)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(r.SampleRate), len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	seg := r.segmenter()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil {
			return nil, err
		}
		if seg.feed(buf) {
			break
		}
	}

	if len(seg.out) == 0 {
		return nil, ErrNoSpeech
	}
	return seg.out, nil
}

func (r *Recorder) segmenter() *segmenter {
	frameDur := time.Duration(r.FrameSize) * time.Second / time.Duration(r.SampleRate)
	return &segmenter{
		thresh:        r.SilenceRMS,
		silenceFrames: int(r.Silence / frameDur),
		maxFrames:     int(r.MaxLength / frameDur),
		waitFrames:    int(r.Wait / frameDur),
	}
}

// segmenter keeps frames from the first loud one until enough quiet frames
// follow. Quiet frames inside the utterance are kept.
type segmenter struct {
	thresh        float64
	silenceFrames int
	maxFrames     int
	waitFrames    int

	out      []float32
	speaking bool
	quiet    int
	frames   int
}

// feed consumes one frame and reports whether recording should stop.
func (s *segmenter) feed(frame []float32) bool {
	s.frames++

	if frameRMS(frame) > s.thresh {
		s.speaking = true
		s.quiet = 0
		s.out = append(s.out, frame...)
	} else if s.speaking {
		s.quiet++
		if s.quiet >= s.silenceFrames {
			return true
		}
		s.out = append(s.out, frame...)
	} else if s.waitFrames > 0 && s.frames >= s.waitFrames {
		return true
	}

	return s.maxFrames > 0 && s.frames >= s.maxFrames
}

func frameRMS(f []float32) float64 {
	if len(f) == 0 {
		return 0
	}
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
