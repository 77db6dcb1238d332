package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"mlpipe/domain/dataset"
)

// WriteCSV writes the table with a header row, creating parent directories
func WriteCSV(path string, table *dataset.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(table.Names()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := 0; i < table.Len(); i++ {
		if err := w.Write(table.Row(i)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}
