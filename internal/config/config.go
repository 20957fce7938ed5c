// Package config holds the server's immutable startup configuration.
package config

// Config is built once at startup from CLI flags and shared by copy with
// every connection task; it never changes afterward.
type Config struct {
	Addr             string
	SnapshotDir      string
	SnapshotFilename string
}

// Default returns the configuration used when no flags are supplied.
func Default() Config {
	return Config{Addr: "127.0.0.1:6379"}
}

// SnapshotPath returns the path to the snapshot file and true, or ("",
// false) if either SnapshotDir or SnapshotFilename is unset — the snapshot
// path is only defined when both are set.
func (c Config) SnapshotPath() (string, bool) {
	if c.SnapshotDir == "" || c.SnapshotFilename == "" {
		return "", false
	}
	return c.SnapshotDir + "/" + c.SnapshotFilename, true
}
