package decode

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"os/exec"
)

// zbarimg exits 4 when it scanned the image fine but found no symbols.
const zbarExitNoSymbols = 4

// zbarDecoder shells out to the zbarimg binary, scanning a grayscale
// snapshot of the frame with every symbology disabled except QR.
type zbarDecoder struct {
	path string
}

func (d *zbarDecoder) Backend() Backend { return BackendZbar }

func (d *zbarDecoder) Decode(img image.Image) ([]string, error) {
	tmp, err := os.CreateTemp("", "zynscan-*.png")
	if err != nil {
		return nil, fmt.Errorf("temp frame: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, toGray(img)); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("flush frame: %w", err)
	}

	cmd := exec.Command(d.path, "-Sdisable", "-Sqrcode.enable", "--xml", "--quiet", tmp.Name())
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == zbarExitNoSymbols {
			return nil, nil
		}
		return nil, fmt.Errorf("zbarimg: %w", err)
	}
	return parseZbarReport(out.Bytes())
}

type zbarReport struct {
	XMLName xml.Name     `xml:"barcodes"`
	Sources []zbarSource `xml:"source"`
}

type zbarSource struct {
	Indexes []zbarIndex  `xml:"index"`
	Symbols []zbarSymbol `xml:"symbol"`
}

type zbarIndex struct {
	Symbols []zbarSymbol `xml:"symbol"`
}

type zbarSymbol struct {
	Type string `xml:"type,attr"`
	Data string `xml:"data"`
}

// parseZbarReport pulls QR payloads out of zbarimg's --xml report.
// Depending on the zbar version, symbols hang off an <index> element or
// sit directly under <source>.
func parseZbarReport(report []byte) ([]string, error) {
	var parsed zbarReport
	if err := xml.Unmarshal(report, &parsed); err != nil {
		return nil, fmt.Errorf("zbarimg report: %w", err)
	}
	var payloads []string
	collect := func(symbols []zbarSymbol) {
		for _, s := range symbols {
			if s.Type == "QR-Code" {
				payloads = append(payloads, s.Data)
			}
		}
	}
	for _, src := range parsed.Sources {
		collect(src.Symbols)
		for _, idx := range src.Indexes {
			collect(idx.Symbols)
		}
	}
	return payloads, nil
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}
