package action

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Saver materializes downloaded content. fetch writes the content to the
// given writer; Save returns the final location and byte count.
type Saver interface {
	Save(ctx context.Context, filename string, fetch func(io.Writer) (int64, error)) (string, int64, error)
}

// DirSaver writes captures into Dir. Content goes to a temporary file first
// and is renamed into place only once complete, so a failed download leaves
// nothing behind. An existing file is never overwritten; a numbered name
// like "clip1 (1).mp4" is used instead.
type DirSaver struct {
	Dir string
}

func (s DirSaver) Save(ctx context.Context, filename string, fetch func(io.Writer) (int64, error)) (string, int64, error) {
	name, err := SafeName(filename)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create download directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, ".motionberry-*.part")
	if err != nil {
		return "", 0, fmt.Errorf("create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	n, err := fetch(tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return "", n, err
	}
	if err := ctx.Err(); err != nil {
		return "", n, err
	}

	final, err := availablePath(s.Dir, name)
	if err != nil {
		return "", n, err
	}
	if err := os.Rename(tmpPath, final); err != nil {
		return "", n, fmt.Errorf("move download into place: %w", err)
	}
	return final, n, nil
}

// SafeName reduces a server-reported filename (often a full server path) to
// a bare file name that cannot escape the download directory.
func SafeName(filename string) (string, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	switch name {
	case "", ".", "..", "/":
		return "", fmt.Errorf("invalid capture filename %q", filename)
	}
	return name, nil
}

func availablePath(dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; i < 1000; i++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil {
			return "", err
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
	}
	return "", fmt.Errorf("too many copies of %s in %s", name, dir)
}
