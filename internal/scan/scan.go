package scan

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"io"

	"github.com/charmbracelet/log"

	"github.com/shepard5/zyn-scanner/internal/extract"
	"github.com/shepard5/zyn-scanner/internal/video"
)

// DefaultInterval is the sampling stride when none is configured.
const DefaultInterval = 10

// Sampler pulls frames from a source and hands back every Nth one,
// decoded. The rest advance the stream and are dropped unexamined.
type Sampler struct {
	src      video.FrameReader
	interval int
	logger   *log.Logger
}

func NewSampler(src video.FrameReader, interval int, logger *log.Logger) *Sampler {
	if interval < 1 {
		interval = 1
	}
	return &Sampler{src: src, interval: interval, logger: logger}
}

// Next returns the stream index and image of the next sampled frame.
// A sampled frame that fails to decode is skipped, not fatal. The
// sequence ends with io.EOF.
func (s *Sampler) Next() (int, image.Image, error) {
	for {
		f, err := s.src.Read()
		if err != nil {
			return 0, nil, err
		}
		if f.Index%s.interval != 0 {
			continue
		}
		img, err := jpeg.Decode(bytes.NewReader(f.Data))
		if err != nil {
			if s.logger != nil {
				s.logger.Debug("skipping undecodable frame", "frame", f.Index, "err", err)
			}
			continue
		}
		return f.Index, img, nil
	}
}

// Events carries optional scan-progress callbacks. Nil callbacks are
// simply not invoked.
type Events struct {
	Frame func(index, codes int) // after each sampled frame
	Found func(code string)      // once per unique code, ascending within a frame
}

// Result summarizes a completed scan.
type Result struct {
	Frames int      // sampled frames actually examined
	Codes  []string // unique codes, sorted ascending
}

// Runner drives the sample, extract, merge loop over one video source.
type Runner struct {
	Source    video.FrameReader
	Interval  int
	Extractor *extract.Extractor
	Logger    *log.Logger
	Events    Events
}

// Run consumes the source to exhaustion. Mid-stream read errors end the
// scan with whatever was accumulated; only opening the source can fail
// hard, and that happens before a Runner exists.
func (r *Runner) Run() Result {
	sampler := NewSampler(r.Source, r.Interval, r.Logger)
	acc := NewAccumulator()
	frames := 0
	for {
		index, img, err := sampler.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) && r.Logger != nil {
				r.Logger.Warn("frame stream ended early", "err", err)
			}
			break
		}
		frames++
		codes := r.Extractor.FromImage(img)
		if r.Events.Frame != nil {
			r.Events.Frame(index, len(codes))
		}
		for _, code := range acc.MergeNew(codes) {
			if r.Events.Found != nil {
				r.Events.Found(code)
			}
		}
	}
	return Result{Frames: frames, Codes: acc.Sorted()}
}
