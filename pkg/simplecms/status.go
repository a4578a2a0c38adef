package simplecms

import "fmt"

// ParseEntryStatus converts a raw string into a typed EntryStatus.
func ParseEntryStatus(s string) (EntryStatus, error) {
	status := EntryStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryStatus, s)
	}
	return status, nil
}

// IsValid reports whether the status is one of the known lifecycle states.
func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryStatusDraft, EntryStatusPublished:
		return true
	default:
		return false
	}
}

// Validate returns an error wrapping ErrInvalidEntryStatus if the status is
// not a known lifecycle state.
func (s EntryStatus) Validate() error {
	if !s.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidEntryStatus, string(s))
	}
	return nil
}

// validateCollection rejects collection names that cannot be persisted.
func validateCollection(collection string) error {
	if collection == "" {
		return fmt.Errorf("%w: collection name is empty", ErrInvalidCollection)
	}
	return nil
}
