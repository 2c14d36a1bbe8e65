package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printFiles lists written outputs as "  format: path" in format order.
func printFiles(out io.Writer, files map[string]string) {
	formats := make([]string, 0, len(files))
	for format := range files {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	for _, format := range formats {
		fmt.Fprintf(out, "  %-4s %s\n", format+":", files[format])
	}
}
