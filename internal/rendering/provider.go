package rendering

import "mailproof/internal/ports"

// Provider is the rendering-service contract used by the runner.
// It is an alias to ports.RenderingProvider to keep call-sites simple.
type Provider = ports.RenderingProvider
