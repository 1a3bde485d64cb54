package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Adda-Baaj/maytapi-sender/pkg/maytapi"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func render(resp maytapi.APIResponse, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", formatJSON:
		raw, err := json.Marshal(resp)
		if err != nil {
			return "", fmt.Errorf("encode json: %w", err)
		}
		return string(raw), nil
	case formatYAML, "yml":
		raw, err := yaml.Marshal(resp)
		if err != nil {
			return "", fmt.Errorf("encode yaml: %w", err)
		}
		return "\n" + strings.TrimRight(string(raw), "\n"), nil
	default:
		return "", fmt.Errorf("unsupported output format %q", format)
	}
}
