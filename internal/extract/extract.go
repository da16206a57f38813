package extract

import (
	"image"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	xdraw "golang.org/x/image/draw"

	"github.com/shepard5/zyn-scanner/internal/decode"
)

// DefaultPattern matches the shape of a reward code.
const DefaultPattern = `[A-Z0-9]{6,}`

// CompilePattern anchors expr so it must match a candidate end to end,
// case-insensitively.
func CompilePattern(expr string) (*regexp.Regexp, error) {
	return regexp.Compile(`\A(?i:` + expr + `)\z`)
}

// TailSegment splits a payload into its candidate code: the text after
// the final slash of the trimmed payload, or the whole trimmed payload
// when it has no slash. A payload ending in a slash has no candidate.
func TailSegment(payload string) (string, bool) {
	trimmed := strings.TrimSpace(payload)
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// Extractor turns a frame into the set of reward codes it contains.
type Extractor struct {
	Decoder  decode.Decoder
	Pattern  *regexp.Regexp
	FullURL  bool // keep whole payloads instead of tail segments
	Upsample int  // linear scale factor applied before decoding; <=1 disables
	Logger   *log.Logger
}

// FromImage decodes every QR symbol in the frame and derives codes from
// the payloads. Decode trouble on a single frame or payload is skipped,
// never escalated; an empty set is a normal outcome.
func (e *Extractor) FromImage(img image.Image) map[string]struct{} {
	if e.Upsample > 1 {
		img = upsample(img, e.Upsample)
	}
	payloads, err := e.Decoder.Decode(img)
	if err != nil {
		if e.Logger != nil {
			e.Logger.Debug("frame decode failed", "backend", e.Decoder.Backend(), "err", err)
		}
		return nil
	}

	codes := make(map[string]struct{})
	for _, raw := range payloads {
		payload := strings.ToValidUTF8(raw, "")
		if e.FullURL {
			if payload != "" {
				codes[payload] = struct{}{}
			}
			continue
		}
		candidate, ok := TailSegment(payload)
		if !ok {
			continue
		}
		if e.Pattern.MatchString(candidate) {
			codes[candidate] = struct{}{}
		}
	}
	return codes
}

// upsample grows the frame by an integer factor with bilinear
// interpolation. Small on-screen QR codes often only decode after this.
func upsample(img image.Image, factor int) image.Image {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*factor, bounds.Dy()*factor))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}
