// Package main provides a simple CLI to generate JSON Schema for objmerge configuration.
// This binary is not released; it's used via `go run` from the repository root.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/objmerge/pkg/schema"
)

// schemaFileMode is the permission mode for generated schema files.
// Schemas need to be world-readable for CI verification and external tooling.
const schemaFileMode = 0o644

func main() {
	var outputDir string

	flag.StringVar(&outputDir, "output-dir", "", "Write "+schema.Filename+" into this directory instead of stdout")
	flag.Parse()

	if err := run(outputDir); err != nil {
		fatalf("%v", err)
	}
}

func run(outputDir string) error {
	content, err := schema.Generate(schema.Options{ModulePath: schema.ModulePath})
	if err != nil {
		return errors.Wrap(err, "generating schema")
	}

	if outputDir == "" {
		fmt.Print(string(content))

		return nil
	}

	outputPath := filepath.Join(outputDir, schema.Filename)

	if err := os.WriteFile(outputPath, content, schemaFileMode); err != nil {
		return errors.Wrapf(err, "writing %s", schema.Filename)
	}

	fmt.Printf("Generated %s\n", outputPath)

	return nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
