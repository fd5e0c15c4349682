// Package policy holds the authorization rule applied before every
// mutation of an owned resource (vehicles, sales, transactions).
//
// The rule is deliberately small: an admin may mutate anything, any
// other identity may only mutate what it created. Reads and creates do
// not consult the policy. Handlers check resource existence first, so a
// missing resource yields 404 even for a caller that would have been
// denied 403.
package policy

import "github.com/Ronald-silva/sistema-gest-o-automotiva/internal/model"

// CanMutate reports whether actor may update or delete a resource whose
// createdBy field is ownerID.
func CanMutate(actor model.Identity, ownerID string) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.ID != "" && actor.ID == ownerID
}
