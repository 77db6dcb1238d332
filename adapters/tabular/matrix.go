package tabular

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

// SaveMatrix writes m in gonum's binary matrix format
func SaveMatrix(path string, m *mat.Dense) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if _, err := m.MarshalBinaryTo(w); err != nil {
		return fmt.Errorf("failed to encode matrix %s: %w", path, err)
	}
	return w.Flush()
}

// LoadMatrix reads a matrix written by SaveMatrix
func LoadMatrix(path string) (*mat.Dense, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var m mat.Dense
	if _, err := m.UnmarshalBinaryFrom(bufio.NewReader(file)); err != nil {
		return nil, fmt.Errorf("failed to decode matrix %s: %w", path, err)
	}
	return &m, nil
}
