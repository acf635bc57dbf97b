package probe

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/samijaber1/aegis-uptime/internal/sla"
)

// LoadFromDirectory discovers and loads all uptime check definition files
// from a directory. Checks are validated structurally; files that fail to
// parse or validate are reported and skipped.
func LoadFromDirectory(dirPath string) ([]CheckWithFile, []sla.ValidationError) {
	var checks []CheckWithFile
	var errors []sla.ValidationError

	var files []string
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		errors = append(errors, sla.ValidationError{
			File:    dirPath,
			Message: fmt.Sprintf("failed to read directory: %v", err),
		})
		return nil, errors
	}

	idSeen := make(map[string]string)
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			errors = append(errors, sla.ValidationError{
				File:    file,
				Message: fmt.Sprintf("failed to read file: %v", err),
			})
			continue
		}

		var check Check
		if err := yaml.Unmarshal(data, &check); err != nil {
			errors = append(errors, sla.ValidationError{
				File:    file,
				Message: fmt.Sprintf("failed to parse YAML: %v", err),
			})
			continue
		}

		if err := check.Validate(); err != nil {
			errors = append(errors, sla.ValidationError{
				File:    file,
				Message: err.Error(),
			})
			continue
		}

		if prevFile, exists := idSeen[check.ID]; exists {
			errors = append(errors, sla.ValidationError{
				File:    file,
				Path:    "id",
				Message: fmt.Sprintf("duplicate check id %q (also in %s)", check.ID, filepath.Base(prevFile)),
			})
			continue
		}
		idSeen[check.ID] = file

		checks = append(checks, CheckWithFile{Check: &check, File: file})
	}

	return checks, errors
}
