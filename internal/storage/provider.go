package storage

import "mailproof/internal/ports"

// Provider is the artifact-store contract used by the runner and the API.
// It is an alias to ports.StorageProvider to keep call-sites simple.
type Provider = ports.StorageProvider
