package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
)

// SanitizePathSegment makes a collection alias safe to use as a directory
// or file name prefix. Ordinary aliases are returned unchanged.
func SanitizePathSegment(s string) string {
	s = strings.TrimPrefix(s, "/")
	s = invalidFilenameChars.ReplaceAllString(s, "_")
	s = whitespaceChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}

// RecordDirName returns the zero padded directory name of a record.
// Example: 5 -> "000005"
func RecordDirName(recordID int) string {
	return fmt.Sprintf("%06d", recordID)
}

// LocalFileName returns the local name of the ordinal-th file of a record.
// The suffix is expected to include its leading dot.
// Example: (5, 2, ".jpg") -> "000005_000002.jpg"
func LocalFileName(recordID, ordinal int, suffix string) string {
	return fmt.Sprintf("%06d_%06d%s", recordID, ordinal, suffix)
}

// ChunkFileName returns the name of the n-th structure chunk of a collection.
// Example: ("maps", 3) -> "maps_structure_003.xml"
func ChunkFileName(alias string, n int) string {
	return fmt.Sprintf("%s_structure_%03d.xml", SanitizePathSegment(alias), n)
}
