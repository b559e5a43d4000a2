package pdfscan

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Opener resolves stored PDF paths against the configured PDF root
// and opens them in the configured reader.
type Opener struct {
	pdfRoot   string
	pdfReader string
}

// NewOpener creates an Opener. An empty reader means "system".
func NewOpener(pdfRoot, pdfReader string) *Opener {
	if pdfReader == "" {
		pdfReader = "system"
	}
	return &Opener{
		pdfRoot:   pdfRoot,
		pdfReader: pdfReader,
	}
}

// Resolve turns a stored PDF path into an absolute path to an existing
// file. Relative paths resolve against the PDF root; absolute paths
// pass through.
func (o *Opener) Resolve(storedPath string) (string, error) {
	if storedPath == "" {
		return "", fmt.Errorf("no PDF path specified")
	}

	fullPath := storedPath
	if !filepath.IsAbs(storedPath) {
		if o.pdfRoot == "" {
			return "", fmt.Errorf("pdf_root not configured")
		}
		fullPath = filepath.Join(o.pdfRoot, storedPath)
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("PDF not found: %s", fullPath)
		}
		return "", fmt.Errorf("checking PDF: %w", err)
	}

	return fullPath, nil
}

// Relativize rewrites an absolute path under the PDF root as a
// root-relative one, so the stored path survives a library move.
// Paths outside the root come back unchanged.
func (o *Opener) Relativize(path string) string {
	if o.pdfRoot == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(o.pdfRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// Open opens a PDF in the configured reader. The path must be
// absolute and existing (see Resolve).
func (o *Opener) Open(fullPath string) error {
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("PDF file does not exist: %s", fullPath)
		}
		return fmt.Errorf("checking PDF file: %w", err)
	}

	cmd, err := viewerCommand(runtime.GOOS, o.pdfReader, fullPath)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// viewerCommand builds the reader invocation for a platform.
func viewerCommand(goos, reader, path string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		switch reader {
		case "skim":
			return exec.Command("open", "-a", "Skim", path), nil
		case "preview":
			return exec.Command("open", "-a", "Preview", path), nil
		default: // "system"
			return exec.Command("open", path), nil
		}
	case "linux":
		switch reader {
		case "zathura", "evince", "okular":
			return exec.Command(reader, path), nil
		default: // "system"
			return exec.Command("xdg-open", path), nil
		}
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
