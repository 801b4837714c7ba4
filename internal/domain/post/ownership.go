package post

// CanMutate reports whether actor may edit or delete something owned by owner.
// Comparison is exact and case-sensitive; a nil owner (tombstone) matches nobody.
func CanMutate(actor string, owner *string) bool {
	if owner == nil || actor == "" {
		return false
	}
	return *owner == actor
}
