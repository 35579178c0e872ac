package domain

// Session is the verified identity of the caller as reported by the
// authentication provider. Email is the authorization key.
type Session struct {
	Email string
	Name  *string
	Image *string
}
