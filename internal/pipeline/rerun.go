package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"proxymill/internal/fileutil"
)

// RerunList is the file written when cards need a manual rerun.
type RerunList struct {
	RunID      string   `toml:"run_id"`
	CardSubset []string `toml:"card_subset"`
}

func writeRerunList(path string, list RerunList) error {
	if len(list.CardSubset) == 0 {
		return fileutil.RemoveIfExists(path)
	}
	data, err := toml.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode rerun list: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create rerun directory: %w", err)
	}
	header := "# Cards left without a proxy. Copy card_subset into [cards] subset and run again.\n"
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}

// ReadRerunList loads a rerun list written by a previous run.
func ReadRerunList(path string) (RerunList, error) {
	var list RerunList
	data, err := os.ReadFile(path)
	if err != nil {
		return list, err
	}
	if err := toml.Unmarshal(data, &list); err != nil {
		return list, fmt.Errorf("decode rerun list: %w", err)
	}
	return list, nil
}
