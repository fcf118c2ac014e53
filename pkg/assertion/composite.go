package assertion

import (
	"errors"
	"fmt"
)

// All runs each named check against the handler's value and
// requires every one to pass. Failures are joined in order.
func (h *Handler) All(names ...string) error {
	var errs []error
	for _, name := range names {
		if _, err := h.Run(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Any runs the named checks in order and stops at the first one
// that passes. If none pass, every failure is returned joined.
func (h *Handler) Any(names ...string) error {
	if len(names) == 0 {
		return fmt.Errorf("%w: Any needs at least one check", ErrBadArguments)
	}
	var errs []error
	for _, name := range names {
		_, err := h.Run(name)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
