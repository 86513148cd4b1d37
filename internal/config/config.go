// Package config loads YAML configuration files into kong.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// DefaultPaths are searched in order when no --config flag is given.
// Missing files are skipped.
var DefaultPaths = []string{
	"/etc/offices/config.yaml",
	"~/.offices.yaml",
}

// YAML is a kong.ConfigurationLoader. Keys are flag names, either dashed or
// snake cased, for example postgres-conn-string or postgres_conn_string.
func YAML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// kong ships a JSON resolver, YAML is converted to it
	buf, err := json.Marshal(snakeKeys(values))
	if err != nil {
		return nil, fmt.Errorf("failed to convert config file: %w", err)
	}

	return kong.JSON(bytes.NewReader(buf))
}

// snakeKeys rewrites dashed keys to the snake case form kong.JSON looks up.
func snakeKeys(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[strings.ReplaceAll(k, "-", "_")] = snakeKeys(val)
		}
		return out
	case []any:
		for i, val := range v {
			v[i] = snakeKeys(val)
		}
		return v
	default:
		return v
	}
}
