package helpers

// Ptr returns a pointer to a copy of v. Used for optional flag fields.
func Ptr[T any](v T) *T {
	return &v
}
