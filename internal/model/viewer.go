package model

// GuestName is the display name for requests without an authenticated
// session.
const GuestName = "guest"

// Viewer is the identity a request renders pages as. It makes the
// guest/member distinction explicit instead of encoding it as an absent
// user id: every Viewer is either Anonymous() or Authenticated(...).
type Viewer struct {
	LoggedIn bool
	UserID   int64
	Username string
}

// Anonymous returns the guest viewer.
func Anonymous() Viewer {
	return Viewer{Username: GuestName}
}

// Authenticated returns a logged-in viewer for the given user.
func Authenticated(userID int64, username string) Viewer {
	return Viewer{LoggedIn: true, UserID: userID, Username: username}
}
