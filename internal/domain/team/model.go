package team

import (
	"fmt"
	"strings"
)

// Team is a club row. ExternalID is empty until the provider id is known.
type Team struct {
	ID           int64
	Name         string
	ShortName    string
	Abbreviation string
	Country      string
	ExternalID   string
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}
	return nil
}
