package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingID            = errors.New("project id is required")
	ErrDuplicateID          = errors.New("duplicate project id")
	ErrUnknownSize          = errors.New("unknown size tag")
	ErrMultiplePlaceholders = errors.New("more than one placeholder project")
	ErrPlaceholderAssets    = errors.New("placeholder project carries media")
	ErrMissingEmail         = errors.New("contact email is required")
)

// Validate checks the catalog invariants and reports every violation.
func (c *Catalog) Validate() error {
	var errs []error
	seen := make(map[ProjectID]struct{}, len(c.Projects))
	placeholders := 0
	for i, p := range c.Projects {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("projects[%d]: %w", i, ErrMissingID))
		} else if _, dup := seen[p.ID]; dup {
			errs = append(errs, fmt.Errorf("projects[%d] %q: %w", i, p.ID, ErrDuplicateID))
		} else {
			seen[p.ID] = struct{}{}
		}
		if !p.Size.valid() {
			errs = append(errs, fmt.Errorf("projects[%d] %q: %w %q", i, p.ID, ErrUnknownSize, p.Size))
		}
		if p.Placeholder {
			placeholders++
			if p.hasAssets() {
				errs = append(errs, fmt.Errorf("projects[%d] %q: %w", i, p.ID, ErrPlaceholderAssets))
			}
		}
	}
	if placeholders > 1 {
		errs = append(errs, fmt.Errorf("%w: found %d", ErrMultiplePlaceholders, placeholders))
	}
	if strings.TrimSpace(c.Contact.Email) == "" {
		errs = append(errs, ErrMissingEmail)
	}
	return errors.Join(errs...)
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
