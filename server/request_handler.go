package server

import (
	"github.com/miekg/dns"

	"hintdns/evt"
	"hintdns/model"
	"hintdns/util"
)

// TTL of the records synthesized for a recursively resolved answer
const recursiveAnswerTTL = 60

const maxZoneAliasDepth = 10

type sections struct {
	answer     []dns.RR
	authority  []dns.RR
	additional []dns.RR
}

// OnRequest handles one accepted query
func (s *Server) OnRequest(w dns.ResponseWriter, request *dns.Msg) {
	question := request.Question[0]
	log := logger().WithField("id", request.Id)

	log.Debugf("new query from %s: %s", w.RemoteAddr(), util.QuestionToString(request.Question))

	if question.Qtype != dns.TypeA {
		log.Debugf("unsupported query type '%s'", dns.TypeToString[question.Qtype])
		s.respond(w, request, sections{}, false, dns.RcodeNotImplemented)

		return
	}

	hostname, cnames, answers := s.zoneAnswer(util.ExtractDomain(question))
	authorities, additionals := s.zone.LookupSuffixNS(hostname)

	switch {
	case len(answers) > 0:
		log.Debugf("answer found in zone")
		s.respond(w, request, sections{
			answer:     append(toRRs(cnames), toRRs(answers)...),
			authority:  toRRs(authorities),
			additional: toRRs(additionals),
		}, true, dns.RcodeSuccess)

	case !request.RecursionDesired:
		if len(cnames)+len(authorities)+len(additionals) > 0 {
			log.Debugf("delegation found in zone")
			s.respond(w, request, sections{
				answer:     toRRs(cnames),
				authority:  toRRs(authorities),
				additional: toRRs(additionals),
			}, true, dns.RcodeSuccess)

			return
		}

		log.Debugf("'%s' is outside the served zone, query refused", hostname)
		s.respond(w, request, sections{}, false, dns.RcodeRefused)

	default:
		log.Debugf("no answer in zone, recursion desired, starting resolver")
		s.recurse(w, request, hostname)
	}
}

// zoneAnswer chases CNAME records for hostname within the zone and
// collects the A records of the name the chain ends at.
func (s *Server) zoneAnswer(hostname string) (string, []model.ResourceRecord, []model.ResourceRecord) {
	var cnames []model.ResourceRecord

	for depth := 0; depth < maxZoneAliasDepth; depth++ {
		recordSet := s.zone.Lookup(hostname, model.TypeCNAME)
		if len(recordSet) == 0 {
			break
		}

		cnames = append(cnames, recordSet...)
		hostname = recordSet[0].Data
	}

	return hostname, cnames, s.zone.Lookup(hostname, model.TypeA)
}

// recurse answers the query through the iterative resolver, tagging its
// outgoing queries with the inbound transaction identifier. The
// resolved chain is synthesized into CNAME records plus the final A
// records.
func (s *Server) recurse(w dns.ResponseWriter, request *dns.Msg, hostname string) {
	log := logger().WithField("id", request.Id)

	result := s.queryResolver.Resolve(hostname, request.Id)
	if len(result.Addresses) == 0 {
		log.Debugf("'%s' could not be resolved", hostname)
		s.respond(w, request, sections{}, false, dns.RcodeNameError)

		return
	}

	chain := append(result.Aliases, result.Hostname)
	records := make([]model.ResourceRecord, 0, len(chain)+len(result.Addresses))

	for i := 0; i+1 < len(chain); i++ {
		records = append(records, model.ResourceRecord{
			Name: chain[i],
			Type: model.TypeCNAME,
			TTL:  recursiveAnswerTTL,
			Data: chain[i+1],
		})
	}

	for _, address := range result.Addresses {
		records = append(records, model.ResourceRecord{
			Name: result.Hostname,
			Type: model.TypeA,
			TTL:  recursiveAnswerTTL,
			Data: address.String(),
		})
	}

	s.respond(w, request, sections{answer: toRRs(records)}, false, dns.RcodeSuccess)
}

// respond builds the reply: the query's transaction identifier and
// question are reused, QR and RA are set, RD is copied, AA only for
// answers out of the zone.
func (s *Server) respond(w dns.ResponseWriter, request *dns.Msg, sec sections, authoritative bool, rcode int) {
	response := new(dns.Msg)
	response.SetRcode(request, rcode)
	response.Authoritative = authoritative
	response.RecursionAvailable = true
	response.Answer = sec.answer
	response.Ns = sec.authority
	response.Extra = sec.additional

	if err := w.WriteMsg(response); err != nil {
		logger().Error("can't write response: ", err)

		return
	}

	logger().WithField("id", request.Id).Debugf("returning %s response, answer = %s",
		dns.RcodeToString[rcode], util.AnswerToString(response.Answer))

	evt.Bus().Publish(evt.ServerQueryServed, dns.RcodeToString[rcode])

	s.statsChan <- &statsEntry{
		domain: util.ExtractDomain(request.Question[0]),
		qType:  request.Question[0].Qtype,
		rcode:  rcode,
	}
}
