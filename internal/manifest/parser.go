package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// ParseFile reads an artifact package.json.
func ParseFile(path string) (*Package, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var pkg Package
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing package %s: %w", path, err)
	}
	if pkg.Dependencies == nil {
		pkg.Dependencies = map[string]string{}
	}
	return &pkg, nil
}

// ParseProject reads a consumer project's package.json.
func ParseProject(path string) (*ProjectPackage, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var pkg ProjectPackage
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing project package %s: %w", path, err)
	}
	return &pkg, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
