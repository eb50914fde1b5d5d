package league

import (
	"fmt"
	"strings"
)

// League is a competition tracked by external provider id.
type League struct {
	ID         int64
	ExternalID string
	Name       string
	ShortName  string
	Slug       string
	Country    string
	Sport      string
}

func (l League) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("league name is required")
	}
	return nil
}

// HasSportPrefix reports whether the league's sport tag starts with prefix,
// case-insensitive. "Rugby Union" and "Rugby League" both match "rugby".
func HasSportPrefix(sport, prefix string) bool {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(sport)), prefix)
}
