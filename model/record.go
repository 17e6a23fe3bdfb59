package model

import (
	"fmt"
	"time"

	"hintdns/util"

	"github.com/miekg/dns"
)

// RecordType is the resource record type. Only A, CNAME and NS are
// supported, everything else is dropped at conversion.
type RecordType uint16

const (
	TypeA     = RecordType(dns.TypeA)
	TypeCNAME = RecordType(dns.TypeCNAME)
	TypeNS    = RecordType(dns.TypeNS)
)

func (t RecordType) String() string {
	return dns.TypeToString[uint16(t)]
}

// MarshalText implements `encoding.TextMarshaler`.
func (t RecordType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements `encoding.TextUnmarshaler`.
func (t *RecordType) UnmarshalText(data []byte) error {
	parsed, err := ParseRecordType(string(data))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

func ParseRecordType(s string) (RecordType, error) {
	switch s {
	case "A":
		return TypeA, nil
	case "CNAME":
		return TypeCNAME, nil
	case "NS":
		return TypeNS, nil
	}

	return 0, fmt.Errorf("unsupported record type '%s'", s)
}

// ResourceRecord is a single typed fact about a domain name. Data holds
// an IPv4 address in dotted notation for A records and a normalized
// domain name for CNAME and NS records.
type ResourceRecord struct {
	Name    string     `json:"name"`
	Type    RecordType `json:"type"`
	TTL     uint32     `json:"ttl"`
	Data    string     `json:"data"`
	Created time.Time  `json:"created"`
}

// IsValid reports whether the record's lifetime has not yet elapsed at
// the passed point in time.
func (r *ResourceRecord) IsValid(now time.Time) bool {
	return r.Created.Add(time.Duration(r.TTL) * time.Second).After(now)
}

// RR converts the record into its wire representation.
func (r *ResourceRecord) RR() (dns.RR, error) {
	data := r.Data
	if r.Type != TypeA {
		data = dns.Fqdn(data)
	}

	return dns.NewRR(fmt.Sprintf("%s %d IN %s %s", dns.Fqdn(r.Name), r.TTL, r.Type, data))
}

// FromRR converts a wire record into a ResourceRecord stamped with the
// passed creation time. Returns false for unsupported record types.
func FromRR(rr dns.RR, created time.Time) (ResourceRecord, bool) {
	var (
		rType RecordType
		data  string
	)

	switch v := rr.(type) {
	case *dns.A:
		rType, data = TypeA, v.A.String()
	case *dns.CNAME:
		rType, data = TypeCNAME, util.NormalizeDomain(v.Target)
	case *dns.NS:
		rType, data = TypeNS, util.NormalizeDomain(v.Ns)
	default:
		return ResourceRecord{}, false
	}

	return ResourceRecord{
		Name:    util.NormalizeDomain(rr.Header().Name),
		Type:    rType,
		TTL:     rr.Header().Ttl,
		Data:    data,
		Created: created,
	}, true
}
