package resolver

import (
	"time"

	"github.com/miekg/dns"

	"hintdns/config"
)

const defaultQueryTimeout = 2 * time.Second

// upstreamClient performs one query/response exchange with an external
// name server.
type upstreamClient interface {
	callExternal(msg *dns.Msg, target string) (response *dns.Msg, rtt time.Duration, err error)
}

type dnsUpstreamClient struct {
	udpClient *dns.Client
}

// createUpstreamClient builds the UDP exchanger. A timeout that is not
// above zero falls back to the default.
func createUpstreamClient(timeout config.Duration) upstreamClient {
	t := defaultQueryTimeout
	if timeout.IsAboveZero() {
		t = timeout.ToDuration()
	}

	return &dnsUpstreamClient{
		udpClient: &dns.Client{
			Net:     "udp",
			Timeout: t,
		},
	}
}

func (r *dnsUpstreamClient) callExternal(msg *dns.Msg, target string) (*dns.Msg, time.Duration, error) {
	return r.udpClient.Exchange(msg, target)
}
