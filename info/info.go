// Package info provides utility functions for parsing the comma-separated
// field lines the SIM7080 modem returns as tagged responses. The at
// package has already stripped the "<head>: " prefix by the time these
// helpers see a line; info deals with what is left.
package info

import "strings"

// Fields splits a tagged response line on commas. No quote-awareness is
// applied — the SIM7080 fields that contain literal commas (none of the
// ones this driver parses do) would need a smarter splitter, but every
// field consumed here is a bare number or a "quoted string" with no
// embedded comma.
func Fields(line string) []string {
	if line == "" {
		return nil
	}
	return strings.Split(line, ",")
}

// Unquote strips a single pair of surrounding double quotes, if present.
func Unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// Last returns the last element of lines, or "" if lines is empty. Used
// for the info-query commands (+CGMI etc.) whose answer is the final
// ResOther line.
func Last(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
