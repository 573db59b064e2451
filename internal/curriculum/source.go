package curriculum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/courselit/internal/models"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks a decoder from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Decode parses a curriculum source document. Only syntax errors fail;
// content problems are left to Validate.
func Decode(data []byte, format Format) (models.Curriculum, error) {
	var c models.Curriculum
	var err error

	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &c)
	case FormatTOML:
		err = toml.Unmarshal(data, &c)
	case FormatJSON, "":
		err = json.NewDecoder(bytes.NewReader(data)).Decode(&c)
	default:
		return models.Curriculum{}, fmt.Errorf("unsupported curriculum format: %s", format)
	}
	if err != nil {
		return models.Curriculum{}, fmt.Errorf("failed to parse %s curriculum: %w", format, err)
	}

	if c.TotalPhases == 0 {
		c.TotalPhases = len(c.Phases)
	}
	return c, nil
}

// LoadFile reads and decodes a curriculum source file.
func LoadFile(path string) (models.Curriculum, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Curriculum{}, fmt.Errorf("failed to read curriculum file: %w", err)
	}
	return Decode(data, FormatFromPath(path))
}
