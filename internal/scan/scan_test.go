package scan

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/shepard5/zyn-scanner/internal/decode"
	"github.com/shepard5/zyn-scanner/internal/extract"
	"github.com/shepard5/zyn-scanner/internal/video"
)

type fakeReader struct {
	frames [][]byte
	next   int
}

func (f *fakeReader) Read() (video.Frame, error) {
	if f.next >= len(f.frames) {
		return video.Frame{}, io.EOF
	}
	f.next++
	return video.Frame{Index: f.next, Data: f.frames[f.next-1]}, nil
}

func blankJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func qrJPEG(t *testing.T, text string) []byte {
	t.Helper()
	matrix, err := qrcode.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, 256, 256, nil)
	if err != nil {
		t.Fatalf("encoding %q: %v", text, err)
	}
	img := image.NewGray(image.Rect(0, 0, matrix.GetWidth(), matrix.GetHeight()))
	for y := 0; y < matrix.GetHeight(); y++ {
		for x := 0; x < matrix.GetWidth(); x++ {
			if matrix.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSamplerStride(t *testing.T) {
	tests := []struct {
		name     string
		frames   int
		interval int
		want     int
	}{
		{"25 frames every 10th", 25, 10, 2},
		{"fewer frames than interval", 9, 10, 0},
		{"exact multiple", 30, 10, 3},
		{"every frame", 7, 1, 7},
		{"empty stream", 0, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := blankJPEG(t)
			frames := make([][]byte, tt.frames)
			for i := range frames {
				frames[i] = frame
			}
			s := NewSampler(&fakeReader{frames: frames}, tt.interval, nil)

			sampled := 0
			for {
				index, _, err := s.Next()
				if err != nil {
					break
				}
				if index%tt.interval != 0 {
					t.Errorf("sampled frame %d with interval %d", index, tt.interval)
				}
				sampled++
			}
			if sampled != tt.want {
				t.Errorf("sampled %d frames, want %d", sampled, tt.want)
			}
		})
	}
}

func TestSamplerSkipsUndecodableFrames(t *testing.T) {
	good := blankJPEG(t)
	s := NewSampler(&fakeReader{frames: [][]byte{good, []byte("not a jpeg"), good}}, 1, nil)

	var indices []int
	for {
		index, _, err := s.Next()
		if err != nil {
			break
		}
		indices = append(indices, index)
	}
	if len(indices) != 2 || indices[0] != 1 || indices[1] != 3 {
		t.Fatalf("sampled indices %v, want [1 3]", indices)
	}
}

func TestAccumulatorAnnouncesOnce(t *testing.T) {
	acc := NewAccumulator()
	frame := map[string]struct{}{"BETA99": {}, "ALPHA1": {}}

	first := acc.MergeNew(frame)
	if len(first) != 2 || first[0] != "ALPHA1" || first[1] != "BETA99" {
		t.Fatalf("first merge = %v, want sorted [ALPHA1 BETA99]", first)
	}
	if again := acc.MergeNew(frame); len(again) != 0 {
		t.Fatalf("second merge = %v, want nothing new", again)
	}
	if acc.Len() != 2 {
		t.Errorf("Len() = %d, want 2", acc.Len())
	}
}

func TestAccumulatorMergesIncrementally(t *testing.T) {
	acc := NewAccumulator()
	acc.MergeNew(map[string]struct{}{"BETA99": {}})

	fresh := acc.MergeNew(map[string]struct{}{"ALPHA1": {}, "BETA99": {}, "GAMMA3": {}})
	if len(fresh) != 2 || fresh[0] != "ALPHA1" || fresh[1] != "GAMMA3" {
		t.Fatalf("fresh = %v, want [ALPHA1 GAMMA3]", fresh)
	}

	sorted := acc.Sorted()
	want := []string{"ALPHA1", "BETA99", "GAMMA3"}
	if len(sorted) != len(want) {
		t.Fatalf("Sorted() = %v, want %v", sorted, want)
	}
	for i := range want {
		if sorted[i] != want[i] {
			t.Errorf("Sorted()[%d] = %q, want %q", i, sorted[i], want[i])
		}
	}
}

func TestWriteCodesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.txt")
	codes := []string{"AAA111", "BBB222", "CCC333"}
	if err := WriteCodes(path, codes); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(raw), "\n") {
		t.Error("file should end with a newline")
	}
	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	if len(lines) != len(codes) {
		t.Fatalf("read %d lines, want %d", len(lines), len(codes))
	}
	for i, code := range codes {
		if lines[i] != code {
			t.Errorf("line %d = %q, want %q", i, lines[i], code)
		}
	}
}

func TestWriteCodesBadPath(t *testing.T) {
	err := WriteCodes(filepath.Join(t.TempDir(), "missing", "codes.txt"), []string{"AAA111"})
	if err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
}

func TestRunnerAnnouncesEachCodeOnce(t *testing.T) {
	frame := qrJPEG(t, "https://example.com/STATIC55")
	pattern, err := extract.CompilePattern(extract.DefaultPattern)
	if err != nil {
		t.Fatal(err)
	}

	var found []string
	r := &Runner{
		Source:   &fakeReader{frames: [][]byte{frame, frame, frame}},
		Interval: 1,
		Extractor: &extract.Extractor{
			Decoder: decode.NewBuiltin(),
			Pattern: pattern,
		},
		Events: Events{Found: func(code string) { found = append(found, code) }},
	}
	result := r.Run()

	if len(found) != 1 || found[0] != "STATIC55" {
		t.Fatalf("found = %v, want exactly one STATIC55 announcement", found)
	}
	if result.Frames != 3 {
		t.Errorf("Frames = %d, want 3", result.Frames)
	}
	if len(result.Codes) != 1 || result.Codes[0] != "STATIC55" {
		t.Errorf("Codes = %v, want [STATIC55]", result.Codes)
	}
}

func TestRunnerSamplesAtInterval(t *testing.T) {
	frame := blankJPEG(t)
	pattern, err := extract.CompilePattern(extract.DefaultPattern)
	if err != nil {
		t.Fatal(err)
	}

	var sampled []int
	r := &Runner{
		Source:   &fakeReader{frames: [][]byte{frame, frame, frame, frame, frame}},
		Interval: 2,
		Extractor: &extract.Extractor{
			Decoder: decode.NewBuiltin(),
			Pattern: pattern,
		},
		Events: Events{Frame: func(index, codes int) { sampled = append(sampled, index) }},
	}
	result := r.Run()

	if len(sampled) != 2 || sampled[0] != 2 || sampled[1] != 4 {
		t.Fatalf("sampled indices %v, want [2 4]", sampled)
	}
	if result.Frames != 2 {
		t.Errorf("Frames = %d, want 2", result.Frames)
	}
	if len(result.Codes) != 0 {
		t.Errorf("Codes = %v, want none from blank frames", result.Codes)
	}
}
