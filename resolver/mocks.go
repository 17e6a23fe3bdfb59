package resolver

import (
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/mock"
)

// ResolverMock is a mock implementation of Resolver for tests of
// dependent packages
type ResolverMock struct {
	mock.Mock
}

func (r *ResolverMock) Resolve(hostname string, ident uint16) *Result {
	args := r.Called(hostname, ident)

	return args.Get(0).(*Result)
}

type mockUpstreamClient struct {
	mock.Mock
}

func (m *mockUpstreamClient) callExternal(msg *dns.Msg, target string) (*dns.Msg, time.Duration, error) {
	args := m.Called(msg, target)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}

	return args.Get(0).(*dns.Msg), args.Get(1).(time.Duration), args.Error(2)
}
