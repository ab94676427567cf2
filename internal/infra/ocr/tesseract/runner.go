package tesseract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	defaultBinary   = "tesseract"
	defaultLanguage = "spa"
)

// Runner shells out to the tesseract CLI, streaming the image on stdin and
// reading the recognised text from stdout.
type Runner struct {
	Binary   string
	Language string
	Timeout  time.Duration
}

func NewRunner(binary, language string, timeout time.Duration) *Runner {
	if binary == "" {
		binary = defaultBinary
	}
	if language == "" {
		language = defaultLanguage
	}
	return &Runner{Binary: binary, Language: language, Timeout: timeout}
}

// Args returns the argument list passed to the binary.
func (r *Runner) Args() []string {
	return []string{"stdin", "stdout", "-l", r.Language}
}

func (r *Runner) ExtractText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", errors.New("ocr: empty image")
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Binary, r.Args()...)
	cmd.Stdin = bytes.NewReader(image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return "", fmt.Errorf("ocr: tesseract exit %d after %s: %s", ee.ExitCode(), time.Since(start).Round(time.Millisecond), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("ocr: run %s: %w", r.Binary, err)
	}
	return stdout.String(), nil
}

// Check verifies the binary can be found on PATH.
func (r *Runner) Check(ctx context.Context) error {
	_, err := exec.LookPath(r.Binary)
	return err
}
