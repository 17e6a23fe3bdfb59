package cmd

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
	"github.com/spf13/cobra"

	"hintdns/cache/recordcache"
	"hintdns/config"
	"hintdns/log"
	"hintdns/resolver"
	"hintdns/util"
	"hintdns/zone"
)

func newQueryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query <hostname>",
		Args:  cobra.ExactArgs(1),
		Short: "resolve a hostname iteratively and print the result",
		Run:   runQuery,
	}
}

func runQuery(_ *cobra.Command, args []string) {
	cfg := config.NewConfig(configPath, false)
	log.ConfigureLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamp)

	rootHints, err := zone.LoadRootHints(cfg.RootHintsFile)
	util.FatalOnError("can't load root hints: ", err)

	cache := recordcache.New()
	if cfg.Caching.Enabled {
		if err := cache.Load(cfg.Caching.File); err != nil {
			log.Log().Warnf("starting with an empty cache: %v", err)
		}
	}

	res := resolver.NewIterativeResolver(&cfg, cache, rootHints)
	result := res.Resolve(args[0], dns.Id())

	fmt.Printf("hostname:  %s\n", result.Hostname)
	fmt.Printf("aliases:   %s\n", strings.Join(result.Aliases, ", "))

	addresses := make([]string, len(result.Addresses))
	for i, address := range result.Addresses {
		addresses[i] = address.String()
	}

	fmt.Printf("addresses: %s\n", strings.Join(addresses, ", "))

	if cfg.Caching.Enabled {
		util.LogOnError("can't persist cache: ", cache.Persist(cfg.Caching.File))
	}
}
