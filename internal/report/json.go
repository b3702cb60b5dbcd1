// Package report renders analysis results as JSON, terminal text or a
// Mermaid dependency diagram.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dusk-indust/archlint/internal/analyzer"
)

// WriteJSON writes res as indented JSON.
func WriteJSON(w io.Writer, res *analyzer.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
