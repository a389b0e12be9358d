package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Boluski2/lendsqr-admin/internal/domain"
)

// DatasetFile is the file name WriteDataset produces.
const DatasetFile = "users.json"

// WriteDataset serializes users into users.json under the provided directory.
func WriteDataset(users []domain.User, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, DatasetFile)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(users); err != nil {
		return "", fmt.Errorf("encode json for %s: %w", path, err)
	}
	return path, nil
}

// ReadDataset loads a users.json file written by WriteDataset.
func ReadDataset(path string) ([]domain.User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var users []domain.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}
	return users, nil
}
