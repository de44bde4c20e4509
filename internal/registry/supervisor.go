package registry

import (
	"context"
	"time"

	"github.com/richxcame/commuter-agent/pkg/httpclient"
)

// SupervisorRegistrar POSTs the registration to the supervisor endpoint.
type SupervisorRegistrar struct {
	client *httpclient.Client
}

// NewSupervisorRegistrar targets the full registration URL, e.g.
// http://supervisor-agent/register.
func NewSupervisorRegistrar(url string, timeout time.Duration) *SupervisorRegistrar {
	return &SupervisorRegistrar{client: httpclient.NewClient(url, timeout)}
}

func (s *SupervisorRegistrar) Name() string { return "supervisor" }

// Register sends the registration once. Any 4xx/5xx is an error.
func (s *SupervisorRegistrar) Register(ctx context.Context, reg Registration) error {
	_, err := s.client.Post(ctx, "", reg, nil)
	return err
}
