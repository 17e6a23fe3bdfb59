package resolver

import (
	"net"
	"strings"

	"github.com/sirupsen/logrus"

	"hintdns/log"
)

// Result is the outcome of one resolution: the final hostname after all
// CNAME indirections, the chain of visited aliases and the addresses
// found for the final hostname. An exhausted search yields empty lists,
// never an error.
type Result struct {
	Hostname  string
	Aliases   []string
	Addresses []net.IP
}

// Resolver translates a hostname to IPv4 addresses. The ident tags all
// queries sent on behalf of this resolution and is either chosen by the
// caller or passed through from an inbound recursive query.
type Resolver interface {
	Resolve(hostname string, ident uint16) *Result
}

func logger(ident uint16) *logrus.Entry {
	return log.PrefixedLog("resolver").WithField("id", ident)
}

func formatAddresses(addresses []net.IP) string {
	result := make([]string, len(addresses))
	for i, addr := range addresses {
		result[i] = addr.String()
	}

	return strings.Join(result, ", ")
}
