package video

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Frame is one compressed frame pulled from the stream.
type Frame struct {
	Index int    // 1-based position in the stream
	Data  []byte // complete JPEG image
}

// FrameReader yields frames in stream order until io.EOF.
type FrameReader interface {
	Read() (Frame, error)
}

// Source decodes a video file into a stream of JPEG frames by piping it
// through ffmpeg. Frames come back compressed so callers can skip the
// ones they never look at.
type Source struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	frames *mjpegScanner
	index  int
	closed bool
}

// Open validates that path points at a readable video stream and starts
// the frame pipe. Any failure here means the source cannot be scanned.
func Open(path string) (*Source, error) {
	if !strings.Contains(path, "://") {
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
	}
	if err := probeVideo(path); err != nil {
		return nil, err
	}

	cmd := exec.Command("ffmpeg",
		"-v", "error",
		"-i", path,
		"-f", "image2pipe",
		"-c:v", "mjpeg",
		"-q:v", "3",
		"-",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting ffmpeg: %w", err)
	}

	return &Source{
		cmd:    cmd,
		stdout: stdout,
		frames: newMJPEGScanner(stdout),
	}, nil
}

// Read returns the next frame, or io.EOF once the stream is exhausted.
func (s *Source) Read() (Frame, error) {
	data, err := s.frames.Next()
	if err != nil {
		return Frame{}, err
	}
	s.index++
	return Frame{Index: s.index, Data: data}, nil
}

// Close releases the decoder process. Safe to call more than once and
// after the stream has already drained.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.stdout != nil {
		s.stdout.Close()
	}
	if s.cmd != nil {
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		_ = s.cmd.Wait()
	}
	return nil
}

// probeVideo asks ffprobe whether the path carries at least one video
// stream. ffprobe prints the codec name for stream v:0 when it does.
func probeVideo(path string) error {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_name",
		"-of", "csv=p=0",
		path,
	).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return fmt.Errorf("ffprobe: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return fmt.Errorf("ffprobe: %w", err)
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return errors.New("no video stream found")
	}
	return nil
}
