package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// MaxFilenameLength is the maximum length for a filename
const MaxFilenameLength = 200

// ArchiveExt is appended to generated archive names
const ArchiveExt = ".zip"

var windowsReserved = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

var invalidCharsRegex = regexp.MustCompile(`[<>:"|?*\\/]`)

var repeatedDashRegex = regexp.MustCompile(`-{2,}`)

// SanitizeFilename makes a repository or directory name safe to use as a local file name.
// Dots, underscores and spaces inside the name are preserved.
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = invalidCharsRegex.ReplaceAllString(name, "-")
	name = repeatedDashRegex.ReplaceAllString(name, "-")
	name = strings.Trim(name, "- ")

	if name == "." || name == ".." {
		name = ""
	}

	upper := strings.ToUpper(name)
	if windowsReserved[strings.TrimSuffix(upper, filepath.Ext(upper))] {
		name = "_" + name
	}

	if len(name) > MaxFilenameLength {
		ext := filepath.Ext(name)
		name = name[:MaxFilenameLength-len(ext)] + ext
	}

	if name == "" {
		name = "untitled"
	}
	return name
}

// ArchiveFilename returns the sanitized "<name>.zip" file name
func ArchiveFilename(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ArchiveExt) {
		name = name[:len(name)-len(ArchiveExt)]
	}
	return SanitizeFilename(name) + ArchiveExt
}

// IsValidFilename checks if a filename is valid
func IsValidFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}

	if invalidCharsRegex.MatchString(name) {
		return false
	}

	upper := strings.ToUpper(name)
	if windowsReserved[strings.TrimSuffix(upper, filepath.Ext(upper))] {
		return false
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}

	return true
}

// EnsureDir ensures the parent directory of path exists
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// FormatBytes renders n with a binary unit suffix
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
