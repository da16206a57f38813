package video

import (
	"bytes"
	"io"
)

var (
	jpegSOI = []byte{0xFF, 0xD8}
	jpegEOI = []byte{0xFF, 0xD9}
)

// mjpegScanner splits a raw MJPEG byte stream into individual JPEG
// images by hunting for the start and end markers. ffmpeg's image2pipe
// output is exactly such a stream.
type mjpegScanner struct {
	r     io.Reader
	buf   bytes.Buffer
	chunk []byte
	err   error
}

func newMJPEGScanner(r io.Reader) *mjpegScanner {
	return &mjpegScanner{r: r, chunk: make([]byte, 1<<20)}
}

// Next returns the next complete JPEG image, or io.EOF when the stream
// ends with no complete image left in the buffer.
func (s *mjpegScanner) Next() ([]byte, error) {
	for {
		if frame := s.extract(); frame != nil {
			return frame, nil
		}
		if s.err != nil {
			return nil, s.err
		}
		n, err := s.r.Read(s.chunk)
		if n > 0 {
			s.buf.Write(s.chunk[:n])
		}
		if err != nil {
			s.err = err
		}
	}
}

// extract pops one complete SOI..EOI span off the front of the buffer.
// Bytes before the start marker are discarded.
func (s *mjpegScanner) extract() []byte {
	data := s.buf.Bytes()
	start := bytes.Index(data, jpegSOI)
	if start == -1 {
		return nil
	}
	end := bytes.Index(data[start+2:], jpegEOI)
	if end == -1 {
		if start > 0 {
			rest := append([]byte(nil), data[start:]...)
			s.buf.Reset()
			s.buf.Write(rest)
		}
		return nil
	}
	end += start + 2 + len(jpegEOI)

	frame := append([]byte(nil), data[start:end]...)
	rest := append([]byte(nil), data[end:]...)
	s.buf.Reset()
	s.buf.Write(rest)
	return frame
}
