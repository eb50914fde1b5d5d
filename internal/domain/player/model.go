package player

import (
	"fmt"
	"strings"
	"time"
)

// Player is a rugby player keyed by provider id.
type Player struct {
	ID                  int64
	FullName            string
	FirstName           string
	LastName            string
	Nationality         string
	DateOfBirth         *time.Time
	PreferredPositionID *int64
	PositionText        string
	ExternalID          string
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.FullName) == "" {
		return fmt.Errorf("player full name is required")
	}
	return nil
}

// SplitName splits on the first space: "Handre Pollard" -> ("Handre",
// "Pollard"), "Pieter-Steph du Toit" -> ("Pieter-Steph", "du Toit").
func SplitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
