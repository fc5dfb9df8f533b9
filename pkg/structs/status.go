package structs

import (
	"strings"
)

type Status string

const (
	// transient state
	PENDING Status = "PENDING"

	// end states
	COMPLETED Status = "COMPLETED"
	FAILED    Status = "FAILED"
)

// IsFinalStatus returns true if no further delivery attempts should be made
// for a task in the given status.
func IsFinalStatus(status Status) bool {
	switch status {
	case COMPLETED, FAILED:
		return true
	default:
		return false
	}
}

func ToStatus(s string) Status {
	switch strings.ToUpper(s) {
	case "PENDING":
		return PENDING
	case "COMPLETED":
		return COMPLETED
	case "FAILED":
		return FAILED
	default:
		return ""
	}
}
