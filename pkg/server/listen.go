package server

import (
	"context"
	"net"
)

// Listen opens the TCP listener for the API server.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, "tcp", addr)
}
