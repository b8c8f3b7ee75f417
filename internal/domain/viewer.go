package domain

// Viewer is the identity a request is served for: either anonymous or an authenticated user.
// The zero value is anonymous.
type Viewer struct {
	userID string
	email  string
}

// Anonymous returns a viewer with no identity.
func Anonymous() Viewer {
	return Viewer{}
}

// Authenticated returns a viewer for a verified user.
func Authenticated(userID, email string) Viewer {
	return Viewer{userID: userID, email: email}
}

// IsAnonymous reports whether the viewer carries no identity.
func (v Viewer) IsAnonymous() bool {
	return v.userID == ""
}

// UserID returns the viewer's user ID and whether the viewer is authenticated.
func (v Viewer) UserID() (string, bool) {
	return v.userID, v.userID != ""
}

// Email returns the verified email, empty for anonymous viewers.
func (v Viewer) Email() string {
	return v.email
}
