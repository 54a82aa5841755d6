package sshserver

// Config defines SSH tail server settings.
type Config struct {
	Enabled     bool
	Addr        string
	HostKeyPath string
}
