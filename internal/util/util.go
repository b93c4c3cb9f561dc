// Package util provides small string helpers shared by the command parser
// and the replay reader.
package util

import "strings"

// CommandSeparator splits a raw host command line into command and arguments.
const CommandSeparator = "|"

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// CleanArgs unquotes every argument in place and returns the slice.
func CleanArgs(data []string) []string {
	for i, v := range data {
		data[i] = FixEscapeQuotes(TrimQuotes(strings.TrimSpace(v)))
	}
	return data
}

// SplitCommand splits a line such as ":KILL:|AK-74|60|pmc|40.5|Head" into
// its command and arguments. Blank lines and lines starting with '#' yield
// an empty command.
func SplitCommand(line string) (string, []string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", nil
	}
	parts := strings.Split(line, CommandSeparator)
	return strings.TrimSpace(parts[0]), parts[1:]
}
