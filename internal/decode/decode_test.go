package decode

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

func stubResolution(t *testing.T, look func(string) (string, error), probe func(string) error, candidates func() []string) {
	t.Helper()
	origLook, origProbe, origCand := lookPath, runProbe, zbarCandidates
	t.Cleanup(func() {
		lookPath, runProbe, zbarCandidates = origLook, origProbe, origCand
	})
	if look != nil {
		lookPath = look
	}
	if probe != nil {
		runProbe = probe
	}
	if candidates != nil {
		zbarCandidates = candidates
	}
}

func TestSelectPrefersEnvPath(t *testing.T) {
	t.Setenv(EnvZbarimgPath, "/somewhere/zbarimg")
	stubResolution(t,
		func(string) (string, error) { t.Fatal("search path consulted despite env override"); return "", nil },
		func(path string) error {
			if path != "/somewhere/zbarimg" {
				t.Errorf("probed %q, want env path", path)
			}
			return nil
		},
		func() []string { return nil },
	)

	d := Select(nil)
	if d.Backend() != BackendZbar {
		t.Fatalf("Backend() = %q, want %q", d.Backend(), BackendZbar)
	}
	if got := os.Getenv(EnvZbarimgPath); got != "/somewhere/zbarimg" {
		t.Errorf("env override rewritten to %q", got)
	}
}

func TestSelectFallsBackWhenProbeFails(t *testing.T) {
	t.Setenv(EnvZbarimgPath, "")
	stubResolution(t,
		func(string) (string, error) { return "/usr/bin/zbarimg", nil },
		func(string) error { return errors.New("exec format error") },
		func() []string { return nil },
	)

	d := Select(nil)
	if d.Backend() != BackendBuiltin {
		t.Fatalf("Backend() = %q, want %q after failed probe", d.Backend(), BackendBuiltin)
	}
}

func TestSelectFallsBackWhenMissing(t *testing.T) {
	t.Setenv(EnvZbarimgPath, "")
	stubResolution(t,
		func(string) (string, error) { return "", errors.New("not found") },
		func(string) error { t.Fatal("probe called with no binary resolved"); return nil },
		func() []string { return []string{filepath.Join(t.TempDir(), "missing", "zbarimg")} },
	)

	d := Select(nil)
	if d.Backend() != BackendBuiltin {
		t.Fatalf("Backend() = %q, want %q", d.Backend(), BackendBuiltin)
	}
	if got := os.Getenv(EnvZbarimgPath); got != "" {
		t.Errorf("env published %q with nothing found", got)
	}
}

func TestResolvePublishesCandidatePath(t *testing.T) {
	t.Setenv(EnvZbarimgPath, "")
	fake := filepath.Join(t.TempDir(), "zbarimg")
	if err := os.WriteFile(fake, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	stubResolution(t,
		func(string) (string, error) { return "", errors.New("not found") },
		nil,
		func() []string { return []string{fake} },
	)

	path, ok := resolveZbarimg(nil)
	if !ok || path != fake {
		t.Fatalf("resolveZbarimg() = %q, %v, want %q, true", path, ok, fake)
	}
	if got := os.Getenv(EnvZbarimgPath); got != fake {
		t.Errorf("env = %q, want published candidate %q", got, fake)
	}
}

func TestParseZbarReport(t *testing.T) {
	tests := []struct {
		name   string
		report string
		want   []string
	}{
		{
			name: "symbols under index",
			report: `<barcodes xmlns='http://zbar.sourceforge.net/2008/barcode'>
<source href='frame.png'><index num='0'>
<symbol type='QR-Code' quality='1'><data><![CDATA[https://example.com/ABC123]]></data></symbol>
<symbol type='QR-Code' quality='1'><data><![CDATA[XYZ789]]></data></symbol>
</index></source></barcodes>`,
			want: []string{"https://example.com/ABC123", "XYZ789"},
		},
		{
			name: "symbols directly under source",
			report: `<barcodes xmlns='http://zbar.sourceforge.net/2008/barcode'>
<source href='frame.png'>
<symbol type='QR-Code' quality='1'><data>PLAIN99</data></symbol>
</source></barcodes>`,
			want: []string{"PLAIN99"},
		},
		{
			name: "non-QR symbols filtered",
			report: `<barcodes xmlns='http://zbar.sourceforge.net/2008/barcode'>
<source href='frame.png'><index num='0'>
<symbol type='EAN-13' quality='1'><data>4006381333931</data></symbol>
<symbol type='QR-Code' quality='1'><data>KEEPME</data></symbol>
</index></source></barcodes>`,
			want: []string{"KEEPME"},
		},
		{
			name:   "empty report",
			report: `<barcodes xmlns='http://zbar.sourceforge.net/2008/barcode'></barcodes>`,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseZbarReport([]byte(tt.report))
			if err != nil {
				t.Fatalf("parseZbarReport() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d payloads %v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("payload[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseZbarReportRejectsGarbage(t *testing.T) {
	if _, err := parseZbarReport([]byte("not xml at all")); err == nil {
		t.Error("expected error for malformed report")
	}
}

func encodeQR(t *testing.T, text string) image.Image {
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
	return img
}

func TestBuiltinDecodeRoundTrip(t *testing.T) {
	d := newBuiltinDecoder()
	payloads, err := d.Decode(encodeQR(t, "https://example.com/REWARD123"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(payloads) != 1 || payloads[0] != "https://example.com/REWARD123" {
		t.Fatalf("Decode() = %v, want single payload", payloads)
	}
}

func TestSelectFallbackDecodesEndToEnd(t *testing.T) {
	t.Setenv(EnvZbarimgPath, "")
	stubResolution(t,
		func(string) (string, error) { return "", errors.New("not found") },
		nil,
		func() []string { return nil },
	)

	d := Select(nil)
	if d.Backend() != BackendBuiltin {
		t.Fatalf("Backend() = %q, want %q", d.Backend(), BackendBuiltin)
	}
	payloads, err := d.Decode(encodeQR(t, "https://example.com/FALLBK7"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(payloads) != 1 || payloads[0] != "https://example.com/FALLBK7" {
		t.Fatalf("Decode() = %v, want the payload via the fallback backend", payloads)
	}
}

func TestBuiltinDecodeEmptyFrame(t *testing.T) {
	blank := image.NewGray(image.Rect(0, 0, 128, 128))
	for i := range blank.Pix {
		blank.Pix[i] = 255
	}

	d := newBuiltinDecoder()
	payloads, err := d.Decode(blank)
	if err != nil {
		t.Fatalf("Decode() error = %v, want frame treated as empty", err)
	}
	if len(payloads) != 0 {
		t.Fatalf("Decode() = %v, want no payloads", payloads)
	}
}

func TestToGrayPreservesBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 32, 16))
	gray := toGray(src)
	if gray.Bounds() != src.Bounds() {
		t.Errorf("bounds %v, want %v", gray.Bounds(), src.Bounds())
	}
	if same := toGray(gray); same != gray {
		t.Error("gray input should be returned as-is")
	}
}
