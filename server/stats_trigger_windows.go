//go:build windows

package server

func registerStatsTrigger(_ *Server) {}
