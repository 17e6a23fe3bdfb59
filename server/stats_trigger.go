//go:build !windows

package server

import (
	"os"
	"os/signal"
	"syscall"
)

// registerStatsTrigger prints the aggregated statistics on SIGUSR2.
func registerStatsTrigger(s *Server) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGUSR2)

	go func() {
		for range signals {
			s.printStats()
		}
	}()
}
