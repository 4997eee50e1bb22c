package xnb

import (
	"path"
	"strings"
)

// NormalizePath folds Windows separators to '/' and cleans the result.
// Asset names in containers are written with either separator.
func NormalizePath(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if name == "" {
		return ""
	}
	return path.Clean(name)
}
