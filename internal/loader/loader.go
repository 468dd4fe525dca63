// Package loader reads a binary program file off disk. The teacher's loader
// walks a parsed assembly AST into VM memory segment-by-segment; there is no
// assembler here (one is explicitly out of scope — see SPEC_FULL.md §1
// Non-goals), so the whole concern collapses to reading the flat byte stream
// §6 describes and handing it to vm.Load.
package loader

import (
	"fmt"
	"os"
)

// ReadFile reads the program binary at path.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-specified program path
	if err != nil {
		return nil, fmt.Errorf("failed to read program file: %w", err)
	}
	return data, nil
}
