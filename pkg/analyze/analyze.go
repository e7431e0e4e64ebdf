// Package analyze provides a file-backed part-analysis source. Real
// geometry analysis happens in an external service; this implementation
// reads the pre-computed JSON analysis it emits alongside each CAD
// file, which is enough for the CLI and for tests.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/corbel-cad/corbel/pkg/assembly"
)

// FileSource loads part analyses from JSON files on disk.
type FileSource struct{}

// Analyze reads the analysis at path and validates it.
func (FileSource) Analyze(ctx context.Context, path string) (*assembly.PartAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis %s: %w", path, err)
	}
	var pa assembly.PartAnalysis
	if err := json.Unmarshal(data, &pa); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", path, err)
	}
	if err := pa.Validate(); err != nil {
		return nil, fmt.Errorf("analysis %s: %w", path, err)
	}
	return &pa, nil
}
