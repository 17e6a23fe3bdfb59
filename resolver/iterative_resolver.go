package resolver

import (
	"net"
	"time"

	"github.com/miekg/dns"

	"hintdns/cache/recordcache"
	"hintdns/config"
	"hintdns/evt"
	"hintdns/model"
	"hintdns/util"
)

const (
	upstreamPort = "53"

	// bounds the alias chase in the cache phase and the restarts of the
	// network phase, a CNAME cycle would otherwise never terminate
	maxAliasDepth = 10
)

// IterativeResolver resolves hostnames by following name server hints
// from the root downwards, one outstanding query at a time. It consults
// the shared record cache first and writes every record learned from a
// valid response back into it.
type IterativeResolver struct {
	cache          *recordcache.RecordCache
	rootHints      []model.Hint
	upstream       upstreamClient
	cachingEnabled bool
	ttlOverride    uint32
}

func NewIterativeResolver(cfg *config.Config, cache *recordcache.RecordCache,
	rootHints []model.Hint) *IterativeResolver {
	return &IterativeResolver{
		cache:          cache,
		rootHints:      rootHints,
		upstream:       createUpstreamClient(cfg.Resolver.QueryTimeout),
		cachingEnabled: cfg.Caching.Enabled,
		ttlOverride:    cfg.Caching.TTLOverride,
	}
}

// Resolve implements the Resolver interface.
func (r *IterativeResolver) Resolve(hostname string, ident uint16) *Result {
	hostname = util.NormalizeDomain(hostname)
	log := logger(ident)

	var aliases []string

	hints := append([]model.Hint{}, r.rootHints...)

	if r.cachingEnabled {
		var addresses []net.IP

		hostname, aliases, addresses = r.answerFromCache(hostname, aliases)
		if len(addresses) > 0 {
			evt.Bus().Publish(evt.CachingResultCacheHit, hostname)
			log.Debugf("answer for '%s' found in cache: %s", hostname, formatAddresses(addresses))

			return &Result{Hostname: hostname, Aliases: aliases, Addresses: addresses}
		}

		evt.Bus().Publish(evt.CachingResultCacheMiss, hostname)

		if cached := r.hintsFromCache(hostname); len(cached) > 0 {
			hints = cached
		}
	}

	restarts := 0

	for len(hints) > 0 {
		hint := hints[0]
		hints = hints[1:]

		addr := r.hintAddress(hint)
		if addr == nil {
			log.Debugf("skipping hint '%s', no address known", hint)

			continue
		}

		log.Debugf("querying name server %s for '%s'", addr, hostname)

		query := newQuery(hostname, ident)

		response, _, err := r.upstream.callExternal(query, net.JoinHostPort(addr.String(), upstreamPort))
		if err != nil {
			log.Debugf("no response from %s: %v", addr, err)

			continue
		}

		if !isValidResponse(query, response) {
			log.Debugf("discarding invalid response from %s", addr)

			continue
		}

		r.storeRecords(response)

		if len(response.Answer) > 0 {
			var addresses []net.IP

			hostname, aliases, addresses = collectAnswers(response, hostname, aliases)
			if len(addresses) > 0 {
				log.Debugf("answer for '%s' found: %s", hostname, formatAddresses(addresses))

				return &Result{Hostname: hostname, Aliases: aliases, Addresses: addresses}
			}

			if restarts++; restarts >= maxAliasDepth {
				log.Debugf("alias chain of '%s' too deep, aborting", hostname)

				break
			}

			// alias target is still unresolved, restart the iteration
			// for the new hostname with the hints of this response
			hints = append(r.nameServerHints(response), r.rootHints...)

			continue
		}

		// no answer: the response delegates, try its name servers first
		hints = append(r.nameServerHints(response), hints...)
	}

	log.Debugf("hints exhausted, '%s' could not be resolved", hostname)

	return &Result{Hostname: hostname}
}

// answerFromCache chases CNAME records for hostname in the cache and
// collects the A records of the name the chain ends at.
func (r *IterativeResolver) answerFromCache(hostname string,
	aliases []string) (string, []string, []net.IP) {
	for depth := 0; depth < maxAliasDepth; depth++ {
		cnames := r.cache.Lookup(hostname, model.TypeCNAME)
		if len(cnames) == 0 {
			break
		}

		aliases = append(aliases, hostname)
		hostname = cnames[0].Data
	}

	var addresses []net.IP

	for _, record := range r.cache.Lookup(hostname, model.TypeA) {
		if ip := net.ParseIP(record.Data); ip != nil {
			addresses = append(addresses, ip)
		}
	}

	return hostname, aliases, addresses
}

// hintsFromCache seeds the hint list from the closest ancestor domain
// of hostname with cached NS records. Name servers with a cached
// address are put ahead of the bare names.
func (r *IterativeResolver) hintsFromCache(hostname string) []model.Hint {
	_, nsRecords := r.cache.LookupSuffixNS(hostname)

	var resolved, bare []model.Hint

	for _, ns := range nsRecords {
		addresses := r.cache.Lookup(ns.Data, model.TypeA)
		if len(addresses) == 0 {
			bare = append(bare, model.Hint{Name: ns.Data})

			continue
		}

		for _, a := range addresses {
			if ip := net.ParseIP(a.Data); ip != nil {
				resolved = append(resolved, model.Hint{Name: ns.Data, Addr: ip})
			}
		}
	}

	return append(resolved, bare...)
}

// hintAddress returns the address to query for the hint. A bare-name
// hint is looked up in the cache only, a hint that cannot be resolved
// this way is skipped by the caller.
func (r *IterativeResolver) hintAddress(hint model.Hint) net.IP {
	if hint.Resolved() {
		return hint.Addr
	}

	if !r.cachingEnabled {
		return nil
	}

	for _, record := range r.cache.Lookup(hint.Name, model.TypeA) {
		if ip := net.ParseIP(record.Data); ip != nil {
			return ip
		}
	}

	return nil
}

// nameServerHints harvests the name servers of a delegating response:
// all NS targets of the authority section, in order, with those that
// have an A record in the additional section resolved and moved to the
// front.
func (r *IterativeResolver) nameServerHints(response *dns.Msg) []model.Hint {
	hints := make([]model.Hint, 0, len(response.Ns))

	for _, rr := range response.Ns {
		if ns, ok := rr.(*dns.NS); ok {
			hints = append(hints, model.Hint{Name: util.NormalizeDomain(ns.Ns)})
		}
	}

	for i := len(response.Extra) - 1; i >= 0; i-- {
		a, ok := response.Extra[i].(*dns.A)
		if !ok {
			continue
		}

		name := util.NormalizeDomain(a.Hdr.Name)

		for j, hint := range hints {
			if !hint.Resolved() && hint.Name == name {
				copy(hints[1:j+1], hints[:j])
				hints[0] = model.Hint{Name: name, Addr: a.A}

				break
			}
		}
	}

	return hints
}

// collectAnswers processes the answer section in order: a CNAME for the
// current hostname advances it and records the alias, an A record for
// the current hostname contributes an address. Relies on CNAME records
// preceding the records that resolve their target.
func collectAnswers(response *dns.Msg, hostname string,
	aliases []string) (string, []string, []net.IP) {
	var addresses []net.IP

	for _, rr := range response.Answer {
		if util.NormalizeDomain(rr.Header().Name) != hostname {
			continue
		}

		switch v := rr.(type) {
		case *dns.CNAME:
			aliases = append(aliases, hostname)
			hostname = util.NormalizeDomain(v.Target)
		case *dns.A:
			addresses = append(addresses, v.A)
		}
	}

	return hostname, aliases, addresses
}

// storeRecords writes all supported records of a valid response through
// to the shared cache.
func (r *IterativeResolver) storeRecords(response *dns.Msg) {
	if !r.cachingEnabled {
		return
	}

	var records []model.ResourceRecord

	for _, section := range [][]dns.RR{response.Answer, response.Ns, response.Extra} {
		for _, rr := range section {
			record, ok := model.FromRR(rr, time.Time{})
			if !ok {
				continue
			}

			if r.ttlOverride > 0 {
				record.TTL = r.ttlOverride
			}

			records = append(records, record)
		}
	}

	if len(records) > 0 {
		r.cache.Insert(records...)
		evt.Bus().Publish(evt.CachingResultCacheChanged, r.cache.TotalCount())
	}
}

func newQuery(hostname string, ident uint16) *dns.Msg {
	query := new(dns.Msg)
	query.SetQuestion(dns.Fqdn(hostname), dns.TypeA)
	query.Id = ident
	query.RecursionDesired = false

	return query
}

// isValidResponse checks that the response answers exactly the passed
// query: it must be a successful response carrying the query's
// transaction identifier and an identical question section. Anything
// else is discarded and the next hint is tried.
func isValidResponse(query, response *dns.Msg) bool {
	if response == nil || !response.Response || response.Rcode != dns.RcodeSuccess {
		return false
	}

	if response.Id != query.Id {
		return false
	}

	if len(response.Question) != len(query.Question) {
		return false
	}

	for i, question := range query.Question {
		if response.Question[i] != question {
			return false
		}
	}

	return true
}
