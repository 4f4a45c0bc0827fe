package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteWorkbook serializes the workbook as workbook.json under the provided
// directory, in the upload payload format the server accepts.
func WriteWorkbook(workbook Workbook, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return writeJSON(filepath.Join(dir, "workbook.json"), workbook)
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}
