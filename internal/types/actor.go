package types

// Actor is the authenticated user on whose behalf an operation runs.
// Admins see and mutate every recipe.
type Actor struct {
	UserID  uint
	IsAdmin bool
}
