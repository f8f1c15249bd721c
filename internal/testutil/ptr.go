package testutil

// Ptr returns a pointer to v, for filling optional fields in test fixtures
func Ptr[T any](v T) *T {
	return &v
}
