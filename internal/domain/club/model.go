package club

import (
	"fmt"
	"strings"
)

// Club is a participating team. ExternalRef links it to the statistics provider.
type Club struct {
	ID          string
	Name        string
	ExternalRef string
}

func (c Club) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("club id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("club name is required")
	}
	return nil
}
