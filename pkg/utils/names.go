package utils

import (
	"regexp"
	"strings"
)

var nameListRe = regexp.MustCompile(`\{[^}]+\}|[^{\s]+`)

// ParseName strips the quoting the oracle wraps around a single name
// (braces, backslashes, stray spaces).
func ParseName(s string) string {
	r := strings.NewReplacer(" ", "", "\\", "", "{", "", "}", "")
	return r.Replace(s)
}

// ParseNameList splits an oracle name list into clean names. Names
// containing spaces arrive brace-quoted; everything else is
// whitespace-separated.
func ParseNameList(s string) []string {
	matches := nameListRe.FindAllString(s, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if n := ParseName(m); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// VerilogName converts a hierarchical pin or gate name into a legal
// verilog identifier: path separators become double underscores and names
// carrying special characters get the verilog escape prefix.
func VerilogName(name string) string {
	name = strings.ReplaceAll(name, "/", "__")
	if strings.ContainsAny(name, "[](){}$") {
		name = "\\" + name
	}
	return name
}
