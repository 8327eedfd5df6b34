package constants

import "strings"

// DefaultAttributes is the default set of fields extracted from a resume,
// in output order.
var DefaultAttributes = []string{
	"Name",
	"Email",
	"Phone Number",
	"Address",
	"Objective",
	"Skills",
	"Employment History",
	"Education History",
	"Accomplishments",
}

// FieldName converts a human-readable attribute name to its record field name
// ("Phone Number" -> "phone_number").
func FieldName(attribute string) string {
	s := strings.ToLower(strings.TrimSpace(attribute))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
