package vectorindex

import (
	"fmt"
	"strings"
)

// checks that metadata is flat: strings, numbers, bools or lists of strings
func ValidateMetadata(metadata map[string]any) error {
	for key, value := range metadata {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("metadata key must not be empty")
		}

		switch value.(type) {
		case string, bool,
			int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64,
			[]string:
		default:
			return fmt.Errorf("metadata %q has unsupported type %T", key, value)
		}
	}

	return nil
}

// filters are equality predicates, so list values are not allowed
func validateFilter(filter map[string]any) error {
	if err := ValidateMetadata(filter); err != nil {
		return err
	}

	for key, value := range filter {
		if _, ok := value.([]string); ok {
			return fmt.Errorf("filter %q must be a scalar", key)
		}
	}

	return nil
}
