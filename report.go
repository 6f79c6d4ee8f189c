package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// writeReport prints a check report as text, or as YAML when asYAML is set.
func writeReport(w io.Writer, r *Report, asYAML bool) error {
	if asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return enc.Close()
	}

	name := r.Script
	if name == "" {
		name = "script"
	}
	status := "ok"
	if !r.OK() {
		status = "FAILED"
	}
	fmt.Fprintf(w, "%s: %s, %d shapes, depth %d\n", name, status, r.Shapes, r.Depth)
	for _, is := range r.Errors {
		fmt.Fprintf(w, "  %s\n", is)
	}
	for _, is := range r.Warnings {
		fmt.Fprintf(w, "  %s\n", is)
	}
	for _, m := range r.Meshes {
		fmt.Fprintf(w, "  %s: %d vertices, %d triangles\n", m.Name, m.Vertices, m.Triangles)
	}
	return nil
}
