package server

import (
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-multierror"
	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"

	"hintdns/cache/recordcache"
	"hintdns/config"
	"hintdns/log"
	"hintdns/metrics"
	"hintdns/model"
	"hintdns/resolver"
	"hintdns/util"
	"hintdns/zone"
)

const (
	maxUDPBufferSize = 512

	headerBitQR = 1 << 15
)

// Server answers DNS queries from a local zone and delegates to the
// iterative resolver for recursive queries. One handler runs per
// accepted inbound datagram, the record cache is the only state shared
// between them.
type Server struct {
	dnsServer     *dns.Server
	httpListener  net.Listener
	httpMux       *chi.Mux
	queryResolver resolver.Resolver
	zone          *zone.Zone
	cache         *recordcache.RecordCache
	statsChan     chan *statsEntry
	statRecorders []*statRecorder
	cfg           *config.Config
}

func logger() *logrus.Entry {
	return log.PrefixedLog("server")
}

// NewServer creates new server instance with passed config
func NewServer(cfg *config.Config) (*Server, error) {
	z, zoneErr := zone.Load(cfg.ZoneFile)
	rootHints, hintsErr := zone.LoadRootHints(cfg.RootHintsFile)

	mErr := multierror.Append(
		multierror.Prefix(zoneErr, "zone: "),
		multierror.Prefix(hintsErr, "root hints: "),
	)
	if mErr.ErrorOrNil() != nil {
		return nil, mErr
	}

	cache := recordcache.New()
	if cfg.Caching.Enabled {
		if err := cache.Load(cfg.Caching.File); err != nil {
			logger().Warnf("starting with an empty cache: %v", err)
		}
	}

	s := &Server{
		dnsServer:     createUDPServer(net.JoinHostPort("127.0.0.1", fmt.Sprint(cfg.Port))),
		queryResolver: resolver.NewIterativeResolver(cfg, cache, rootHints),
		zone:          z,
		cache:         cache,
		statsChan:     make(chan *statsEntry, 20),
		statRecorders: createStatRecorders(),
		cfg:           cfg,
	}

	go s.collectStats()

	registerStatsTrigger(s)

	if cfg.HTTPPort > 0 {
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.HTTPPort))
		if err != nil {
			return nil, fmt.Errorf("start http listener failed: %w", err)
		}

		s.httpListener = listener
		s.httpMux = chi.NewRouter()

		metrics.Start(s.httpMux, cfg.Metrics)
		metrics.RegisterEventListeners()

		s.registerAPIEndpoints(s.httpMux)
	}

	s.registerDNSHandlers()

	return s, nil
}

func createUDPServer(address string) *dns.Server {
	return &dns.Server{
		Addr:          address,
		Net:           "udp",
		Handler:       dns.NewServeMux(),
		MsgAcceptFunc: acceptQuery,
		UDPSize:       maxUDPBufferSize,
		NotifyStartedFunc: func() {
			logger().Infof("UDP server is up and running on address %s", address)
		},
	}
}

// acceptQuery decides from the header alone whether an inbound datagram
// is dispatched to a handler. Responses, non-standard opcodes and
// messages without a question are dropped without any reply. A body
// that fails to unpack after the header was accepted is answered with
// FORMERR by the dns library.
func acceptQuery(dh dns.Header) dns.MsgAcceptAction {
	if dh.Bits&headerBitQR != 0 {
		return dns.MsgIgnore
	}

	if opcode := int(dh.Bits>>11) & 0xF; opcode != dns.OpcodeQuery {
		return dns.MsgIgnore
	}

	if dh.Qdcount == 0 {
		return dns.MsgIgnore
	}

	return dns.MsgAccept
}

func (s *Server) registerDNSHandlers() {
	handler := s.dnsServer.Handler.(*dns.ServeMux)
	handler.HandleFunc(".", s.OnRequest)
}

// Start starts the server
func (s *Server) Start(errCh chan<- error) {
	logger().Info("Starting server")

	go func() {
		if err := s.dnsServer.ListenAndServe(); err != nil {
			errCh <- fmt.Errorf("start %s listener failed: %w", s.dnsServer.Net, err)
		}
	}()

	if s.httpListener != nil {
		go func() {
			logger().Infof("http server is up and running on addr/port %d", s.cfg.HTTPPort)

			if err := http.Serve(s.httpListener, s.httpMux); err != nil {
				errCh <- fmt.Errorf("start http listener failed: %w", err)
			}
		}()
	}
}

// Stop shuts the listeners down and flushes the record cache to disk.
func (s *Server) Stop() error {
	logger().Info("Stopping server")

	if err := s.dnsServer.Shutdown(); err != nil {
		return fmt.Errorf("stop %s listener failed: %w", s.dnsServer.Net, err)
	}

	if s.httpListener != nil {
		_ = s.httpListener.Close()
	}

	if s.cfg.Caching.Enabled {
		if err := s.cache.Persist(s.cfg.Caching.File); err != nil {
			return fmt.Errorf("persist cache failed: %w", err)
		}

		logger().Infof("record cache persisted to '%s'", s.cfg.Caching.File)
	}

	return nil
}

func toRRs(records []model.ResourceRecord) []dns.RR {
	result := make([]dns.RR, 0, len(records))

	for i := range records {
		rr, err := records[i].RR()
		if err != nil {
			util.LogOnError("can't convert record: ", err)

			continue
		}

		result = append(result, rr)
	}

	return result
}
