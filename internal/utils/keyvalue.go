package utils

import (
	"fmt"
	"strings"
)

// ParseKeyValues parses "key=value" pairs into a map. Later pairs win.
func ParseKeyValues(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid key=value pair: %q", pair)
		}

		values[key] = strings.TrimSpace(value)
	}

	return values, nil
}

// ParseBool accepts the spellings used in recipe profiles (True/False, on/off, 1/0)
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "on", "yes":
		return true, nil
	case "false", "0", "off", "no":
		return false, nil
	}

	return false, fmt.Errorf("invalid boolean value: %q", s)
}

// OnOff renders a boolean as a CMake switch
func OnOff(b bool) string {
	if b {
		return "ON"
	}

	return "OFF"
}
