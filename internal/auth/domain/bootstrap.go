package domain

// BootstrapData describes the first administrator created on an empty
// directory.
type BootstrapData struct {
	Username string
	Nickname string
	Password string
}
