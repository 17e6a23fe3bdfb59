package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hintdns/config"
	"hintdns/evt"
	"hintdns/instanceid"
	"hintdns/log"
	"hintdns/server"
	"hintdns/util"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Args:  cobra.NoArgs,
		Short: "start hintdns name server (default command)",
		Run:   startServer,
	}
}

func startServer(_ *cobra.Command, _ []string) {
	cfg := config.NewConfig(configPath, true)
	log.ConfigureLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamp)

	log.Log().Infof("hintdns %s (build time %s), instance %s", version, buildTime, instanceid.String())

	signals := make(chan os.Signal, 1)
	done := make(chan bool)

	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	srv, err := server.NewServer(&cfg)
	util.FatalOnError("can't start server: ", err)

	errCh := make(chan error)

	srv.Start(errCh)

	go func() {
		<-signals
		log.Log().Infof("Terminating...")
		util.LogOnError("can't stop server: ", srv.Stop())
		done <- true
	}()

	evt.Bus().Publish(evt.ApplicationStarted, version, buildTime)

	select {
	case err := <-errCh:
		util.FatalOnError("server failed: ", err)
	case <-done:
	}
}
