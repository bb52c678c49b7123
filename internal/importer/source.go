package importer

import (
	"bytes"
	_ "embed"
	"io"
	"os"
)

//go:embed state_capitals.csv
var bundledCSV []byte

// Source opens an import file. Callers close the returned reader.
type Source func() (io.ReadCloser, error)

// FileSource reads the import file at path.
func FileSource(path string) Source {
	return func() (io.ReadCloser, error) {
		return os.Open(path)
	}
}

// EmbeddedSource reads the bundled 50-state file.
func EmbeddedSource() Source {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(bundledCSV)), nil
	}
}

// SourceFor returns FileSource(path), or EmbeddedSource when path is empty.
func SourceFor(path string) Source {
	if path == "" {
		return EmbeddedSource()
	}
	return FileSource(path)
}
