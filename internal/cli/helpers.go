package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/thoas/go-funk"
	"sigs.k8s.io/yaml"
)

const (
	tableFormat = "table"
	jsonFormat  = "json"
	yamlFormat  = "yaml"
)

var (
	legalOutputTypes = []string{tableFormat, jsonFormat, yamlFormat}
)

func validateOutput(output string) error {
	if len(output) > 0 && !funk.Contains(legalOutputTypes, output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}
	return nil
}

func outputUsage() string {
	return fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", "))
}

// printResource writes v as json or yaml, or hands it to table for the default format.
func printResource(w io.Writer, output string, v any, table func(io.Writer)) error {
	switch output {
	case jsonFormat:
		marshalled, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling resource: %w", err)
		}
		fmt.Fprintf(w, "%s\n", string(marshalled))
	case yamlFormat:
		marshalled, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshalling resource: %w", err)
		}
		fmt.Fprintf(w, "%s", string(marshalled))
	default:
		table(w)
	}
	return nil
}

// parseValues turns repeated ID=VALUE flags into a map keyed by chemical id.
func parseValues(flag string, pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	values := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		id, raw, ok := strings.Cut(pair, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("--%s: expected ID=VALUE, got %q", flag, pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("--%s: invalid value for %s: %q", flag, id, raw)
		}
		if v < 0 {
			return nil, fmt.Errorf("--%s: %s must not be negative", flag, id)
		}
		values[id] = v
	}
	return values, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
