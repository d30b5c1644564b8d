package mapping

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/xbfighting/google-sheet-to-github-issues/pkg/constants"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
)

// File is the on-disk shape of a mappings file.
//
//	mappings:
//	  - source: Feature / Issue
//	    target: title
//	  - source: Owner
//	    target: assignees
//	    transform: list
type File struct {
	Mappings []FieldMapping `yaml:"mappings" json:"mappings"`
}

// Parse decodes and validates a YAML mapping document.
func Parse(data []byte) ([]FieldMapping, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}
	if len(f.Mappings) == 0 {
		return nil, errors.NewValidationError("mappings", nil, "at least one mapping is required")
	}
	if err := Validate(f.Mappings); err != nil {
		return nil, err
	}
	return f.Mappings, nil
}

// Load reads a YAML mappings file.
func Load(path string) ([]FieldMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		var parseErr *errors.ParseError
		if errors.As(err, &parseErr) {
			parseErr.File = path
		}
		return nil, err
	}
	return m, nil
}

// Marshal encodes mappings as a YAML document accepted by Parse.
func Marshal(mappings []FieldMapping) ([]byte, error) {
	data, err := yaml.Marshal(File{Mappings: mappings})
	if err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}
	return data, nil
}

// Save writes mappings to path as YAML.
func Save(path string, mappings []FieldMapping) error {
	data, err := Marshal(mappings)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return errors.WrapIO("create", dir, err)
		}
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
