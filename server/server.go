package server

import (
	"os"
)

type Server struct{}

// Run starts the router on PORT, or the supplied fallback port when PORT is
// unset.
func (s *Server) Run(runner interface{ Run(addr ...string) error }, fallbackPort string) error {
	port := os.Getenv("PORT")
	if port == "" {
		port = fallbackPort
	}
	if port == "" {
		port = "8080"
	}
	return runner.Run(":" + port)
}
