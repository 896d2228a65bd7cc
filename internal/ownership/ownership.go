// Package ownership enforces that only a resource's owner may mutate it.
package ownership

import (
	"fmt"

	"github.com/vidstream/backend/internal/apperror"
)

// Owned is implemented by every mutable resource.
type Owned interface {
	Owner() string
	ResourceName() string
}

// AssertOwner fails with Forbidden unless callerID owns resource. Callers
// check immediately before the mutation it guards.
func AssertOwner(resource Owned, callerID string) error {
	if callerID == "" || resource.Owner() != callerID {
		return apperror.Forbidden(fmt.Sprintf("only the owner can modify this %s", resource.ResourceName()))
	}
	return nil
}
