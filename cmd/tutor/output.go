package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/adaptive-tutor/internal/observability"
)

const (
	formatJSON = "json"
	formatText = "text"
)

// render writes v as indented JSON, or through text when --format=text
func render(out io.Writer, v any, text func(*observability.Printer)) error {
	if outputFormat == formatText {
		text(observability.NewPrinter(out))
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// readInput reads path, or stdin when path is "-"
func readInput(in io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return data, nil
}
