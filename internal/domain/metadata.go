package domain

// Metadata is the process-wide identity read once at startup.
// It is passed by value to every flush and never changes while running.
type Metadata struct {
	// BackendURL is the pipeline backend, host[:port] or a full base URL
	BackendURL string

	// HostIP identifies this server to the backend
	HostIP string

	// Location is a free-form label for where the device is installed
	Location string

	// Hostname of the machine running the server
	Hostname string
}
