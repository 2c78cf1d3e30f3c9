package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"jokebox/internal/errors"
)

// Supported dataset formats
const (
	FormatAuto = "auto"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Load reads a dataset file and returns an immutable store over it.
// format may be "auto" to detect from the file extension.
//
// Accepted document shapes:
//   - JSON: a top-level array of values
//   - YAML: a top-level sequence of values
//   - TOML: a top-level `jokes` array (TOML has no top-level arrays)
//
// Every entry is normalized to its JSON encoding, so the rest of the
// service only ever deals with json.RawMessage.
func Load(path, format string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	if format == "" || format == FormatAuto {
		format = DetectFormat(path)
	}

	jokes, err := decode(data, format)
	if err != nil {
		return nil, err
	}

	return NewStore(jokes), nil
}

// DetectFormat maps a file extension to a dataset format, defaulting to JSON.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

func decode(data []byte, format string) ([]json.RawMessage, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatTOML:
		return decodeTOML(data)
	default:
		return nil, errors.New(errors.DatasetInvalid, "unsupported dataset format: "+format)
	}
}

func decodeJSON(data []byte) ([]json.RawMessage, error) {
	var jokes []json.RawMessage
	if err := json.Unmarshal(data, &jokes); err != nil {
		return nil, errors.Wrap(errors.DatasetInvalid, "dataset is not a JSON array", err)
	}
	return jokes, nil
}

func decodeYAML(data []byte) ([]json.RawMessage, error) {
	var entries []interface{}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(errors.DatasetInvalid, "dataset is not a YAML sequence", err)
	}
	return normalize(entries)
}

// tomlDataset is the expected TOML document shape
type tomlDataset struct {
	Jokes []interface{} `toml:"jokes"`
}

func decodeTOML(data []byte) ([]json.RawMessage, error) {
	var doc tomlDataset
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.DatasetInvalid, "dataset is not a TOML document with a jokes array", err)
	}
	if doc.Jokes == nil {
		return nil, errors.New(errors.DatasetInvalid, "TOML dataset is missing the jokes array")
	}
	return normalize(doc.Jokes)
}

// normalize re-encodes decoded entries as JSON raw messages
func normalize(entries []interface{}) ([]json.RawMessage, error) {
	jokes := make([]json.RawMessage, 0, len(entries))
	for i, entry := range entries {
		raw, err := json.Marshal(entry)
		if err != nil {
			return nil, errors.Wrap(errors.DatasetInvalid,
				fmt.Sprintf("entry %d cannot be represented as JSON", i), err)
		}
		jokes = append(jokes, raw)
	}
	return jokes, nil
}
