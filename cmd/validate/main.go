package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"zonewatch/pkg/zone"
)

var tagPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <zone_types.yaml>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	if err := validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Zone types file is valid!")
}

func validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".yaml") && !strings.HasSuffix(baseName, ".yml") {
		return fmt.Errorf("zone types file must have a .yaml or .yml extension: %s", baseName)
	}

	registry := zone.NewRegistry()
	if err := registry.LoadFile(filename); err != nil {
		return err
	}

	var errs []string
	for _, tag := range registry.Tags() {
		if !tagPattern.MatchString(tag) {
			errs = append(errs, fmt.Sprintf("zone type tag %q must be lowercase snake_case", tag))
		}
		cfg := registry.ConfigFor(tag)
		if cfg.Label == "" {
			errs = append(errs, fmt.Sprintf("zone type %q has no label", tag))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(errs, "\n"))
	}
	return nil
}
