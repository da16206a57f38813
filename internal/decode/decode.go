package decode

import (
	"image"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// EnvZbarimgPath overrides zbarimg discovery when set.
const EnvZbarimgPath = "ZBARIMG_PATH"

// Backend identifies which QR decoder implementation is in use.
type Backend string

const (
	BackendZbar    Backend = "zbarimg"
	BackendBuiltin Backend = "builtin"
)

// Decoder extracts QR payloads from a single frame. Implementations
// return every payload found; an empty slice with a nil error means
// the frame simply contained no readable symbols.
type Decoder interface {
	Backend() Backend
	Decode(img image.Image) ([]string, error)
}

// Seams for tests; production code never touches these.
var (
	lookPath = exec.LookPath
	runProbe = func(path string) error {
		return exec.Command(path, "--version").Run()
	}
	zbarCandidates = defaultZbarCandidates
)

// Select resolves the decoder backend once, before any frames are read.
// zbarimg is preferred; when it cannot be located or fails its probe the
// built-in pure-Go decoder takes over and the scan proceeds identically.
func Select(logger *log.Logger) Decoder {
	path, found := resolveZbarimg(logger)
	if found {
		if err := runProbe(path); err == nil {
			return &zbarDecoder{path: path}
		} else if logger != nil {
			logger.Warn("zbarimg not usable; falling back to built-in QR decoder", "path", path, "err", err)
		}
	} else if logger != nil {
		logger.Warn("zbarimg not found; falling back to built-in QR decoder")
	}
	return newBuiltinDecoder()
}

// resolveZbarimg locates the zbarimg binary: the environment override
// wins, then the regular search path, then a short list of well-known
// install locations. A well-known hit is published back into the
// environment (only when unset) so child processes resolve the same
// binary.
func resolveZbarimg(logger *log.Logger) (string, bool) {
	if p := os.Getenv(EnvZbarimgPath); p != "" {
		return p, true
	}
	if p, err := lookPath("zbarimg"); err == nil {
		return p, true
	}
	for _, p := range zbarCandidates() {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		os.Setenv(EnvZbarimgPath, p)
		if logger != nil {
			logger.Info("using zbarimg", "path", p)
		}
		return p, true
	}
	return "", false
}

func defaultZbarCandidates() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "bin", "zbarimg"))
	}
	return append(paths,
		"/opt/homebrew/bin/zbarimg",
		"/usr/local/bin/zbarimg",
		"/usr/bin/zbarimg",
	)
}
