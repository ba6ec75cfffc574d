package lifecycle

import (
	"regexp"
	"strings"
)

// The legacy client smuggled structured data through the free-text notes
// field as "Location: x", "Time: y" and "[Response from name]: z" lines.
// Those fields are first-class now; parsing stays only so old rows keep
// rendering. New writes never produce this format.

var responsePattern = regexp.MustCompile(`^\[(?:Response from|Declined by) ([^\]]+)\]:\s*(.*)$`)

type NoteResponse struct {
	Author  string
	Message string
}

type NoteFields struct {
	Location  string
	Time      string
	Responses []NoteResponse
	FreeText  string
}

// ParseNotes extracts legacy annotations from a notes blob. Lines it cannot
// recognize are kept verbatim as free text; malformed input never fails.
func ParseNotes(notes string) NoteFields {
	var (
		fields NoteFields
		free   []string
	)

	for _, line := range strings.Split(notes, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := responsePattern.FindStringSubmatch(trimmed); m != nil {
			fields.Responses = append(fields.Responses, NoteResponse{
				Author:  m[1],
				Message: m[2],
			})
			continue
		}

		if v, ok := strings.CutPrefix(trimmed, "Location:"); ok {
			fields.Location = strings.TrimSpace(v)
			continue
		}

		if v, ok := strings.CutPrefix(trimmed, "Time:"); ok {
			fields.Time = strings.TrimSpace(v)
			continue
		}

		free = append(free, trimmed)
	}

	fields.FreeText = strings.Join(free, "\n")

	return fields
}
