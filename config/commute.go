package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Output formats understood by the exporters.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	FormatHTML = "html"
)

// CommuteConfig controls where the commute dataset is written.
type CommuteConfig struct {
	// Output is the CSV consumed by the report.
	Output string `json:"output"`
	// ExtraFormats writes copies next to Output with the matching extension.
	ExtraFormats []string `json:"extra_formats"`
}

func (c *CommuteConfig) SetDefaults() {
	if c.Output == "" {
		c.Output = "commute.csv"
	}
}

func (c CommuteConfig) Validate() error {
	if !strings.EqualFold(filepath.Ext(c.Output), ".csv") {
		return fmt.Errorf("output must be a .csv file, got %s", c.Output)
	}
	for _, f := range c.ExtraFormats {
		switch strings.ToLower(f) {
		case FormatJSON, FormatXLSX:
		default:
			return fmt.Errorf("unsupported extra format %q", f)
		}
	}
	return nil
}

// OutputFor returns the path of the dataset copy in the given format.
func (c CommuteConfig) OutputFor(format string) string {
	return strings.TrimSuffix(c.Output, filepath.Ext(c.Output)) + "." + strings.ToLower(format)
}
