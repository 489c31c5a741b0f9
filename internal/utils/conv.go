package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// ParsePage reads a 1-based page number; anything unusable means page 1.
func ParsePage(s string) int {
	if page := StringToInt(s); page > 0 {
		return page
	}
	return 1
}

// ParseOptionalBool returns nil unless s is a recognised boolean.
func ParseOptionalBool(s string) *bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &b
}
