package health

import "context"

const serviceName = "kbase"

// anything that can report whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type Response struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version,omitempty"`
	Database string `json:"database,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}
