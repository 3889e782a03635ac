package domain

// Identity is the resolved caller of an operation.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// RequireIdentity fails with ErrUnauthenticated when no caller was resolved.
func RequireIdentity(id *Identity) error {
	if id == nil || id.UserID == "" {
		return ErrUnauthenticated
	}
	return nil
}
