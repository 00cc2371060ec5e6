package fileset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Source is one loaded input file.
type Source struct {
	Path string
	Data []byte
}

// TooLargeError reports a file that exceeds the configured input cap.
type TooLargeError struct {
	Path  string
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("%s: input exceeds %d bytes", e.Path, e.Limit)
}

// ReadFile reads one OS path with the same cap as Resolver.Load. The path
// "-" reads stdin.
func ReadFile(path string, stdin io.Reader, limit int64) (Source, error) {
	if path == "-" {
		data, err := readLimited(stdin, "<stdin>", limit)
		if err != nil {
			return Source{}, err
		}
		return Source{Path: "<stdin>", Data: data}, nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Source{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	data, err := readLimited(f, path, limit)
	if err != nil {
		return Source{}, err
	}
	return Source{Path: path, Data: data}, nil
}

func readLimited(r io.Reader, path string, limit int64) ([]byte, error) {
	if limit <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > limit {
		return nil, &TooLargeError{Path: path, Limit: limit}
	}
	return data, nil
}
