// Package zone holds the authoritative record table the server answers
// from and the root hint set used to bootstrap iterative resolution.
// Both are loaded once at startup, never mutated and never expire.
package zone

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"hintdns/model"
	"hintdns/util"
)

// Zone is a static, read-only table of resource records.
type Zone struct {
	records map[string][]model.ResourceRecord
}

// Lookup returns all records of the given type owned by name. Zone
// records do not expire.
func (z *Zone) Lookup(name string, rType model.RecordType) []model.ResourceRecord {
	name = util.NormalizeDomain(name)

	var result []model.ResourceRecord

	for _, record := range z.records[name] {
		if record.Type == rType {
			result = append(result, record)
		}
	}

	return result
}

// LookupSuffixNS walks name's labels from most specific toward, but
// excluding, the root and returns the NS records of the first ancestor
// domain that has any, plus the A records the zone knows for the
// returned name servers.
func (z *Zone) LookupSuffixNS(name string) (authorities, additionals []model.ResourceRecord) {
	for _, domain := range util.Suffixes(name) {
		authorities = z.Lookup(domain, model.TypeNS)
		if len(authorities) == 0 {
			continue
		}

		for _, ns := range authorities {
			additionals = append(additionals, z.Lookup(ns.Data, model.TypeA)...)
		}

		return authorities, additionals
	}

	return nil, nil
}

// IsEmpty reports whether the zone contains no records at all.
func (z *Zone) IsEmpty() bool {
	return len(z.records) == 0
}

// Load reads a zone from a master-style text file: one record per line
// as "name ttl type data", ';' starts a comment. Only A, CNAME and NS
// records are understood.
func Load(path string) (*Zone, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can't open zone file: %w", err)
	}
	defer file.Close()

	zone := &Zone{records: make(map[string][]model.ResourceRecord)}

	scanner := bufio.NewScanner(file)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := scanner.Text()
		if idx := strings.IndexByte(line, ';'); idx >= 0 {
			line = line[:idx]
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		record, err := parseRecord(fields)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}

		zone.records[record.Name] = append(zone.records[record.Name], record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("can't read zone file: %w", err)
	}

	return zone, nil
}

func parseRecord(fields []string) (model.ResourceRecord, error) {
	if len(fields) != 4 {
		return model.ResourceRecord{}, fmt.Errorf("expected 'name ttl type data', got %d fields", len(fields))
	}

	ttl, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return model.ResourceRecord{}, fmt.Errorf("invalid ttl '%s': %w", fields[1], err)
	}

	rType, err := model.ParseRecordType(fields[2])
	if err != nil {
		return model.ResourceRecord{}, err
	}

	data := fields[3]
	if rType != model.TypeA {
		data = util.NormalizeDomain(data)
	}

	return model.ResourceRecord{
		Name: util.NormalizeDomain(fields[0]),
		Type: rType,
		TTL:  uint32(ttl),
		Data: data,
	}, nil
}
