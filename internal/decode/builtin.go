package decode

import (
	"image"

	"github.com/makiuchi-d/gozxing"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// builtinDecoder is the pure-Go fallback. It tries the multi-symbol
// reader first and retries with the single-symbol reader before calling
// a frame empty.
type builtinDecoder struct {
	multi  *multiqr.QRCodeMultiReader
	single gozxing.Reader
}

func newBuiltinDecoder() *builtinDecoder {
	return &builtinDecoder{
		multi:  multiqr.NewQRCodeMultiReader(),
		single: qrcode.NewQRCodeReader(),
	}
}

// NewBuiltin returns the pure-Go decoder directly, bypassing selection.
func NewBuiltin() Decoder {
	return newBuiltinDecoder()
}

func (d *builtinDecoder) Backend() Backend { return BackendBuiltin }

func (d *builtinDecoder) Decode(img image.Image) ([]string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, err
	}
	if results, err := d.multi.DecodeMultiple(bmp, nil); err == nil {
		payloads := make([]string, 0, len(results))
		for _, r := range results {
			payloads = append(payloads, r.GetText())
		}
		return payloads, nil
	}
	result, err := d.single.Decode(bmp, nil)
	if err != nil {
		// Nothing decodable in this frame.
		return nil, nil
	}
	if text := result.GetText(); text != "" {
		return []string{text}, nil
	}
	return nil, nil
}
