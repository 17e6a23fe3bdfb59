package zone

import (
	"fmt"
	"net"

	"hintdns/model"
)

// LoadRootHints reads the root hint set from a zone-format file: the NS
// records of the root name the server names, their A records the
// addresses. A root server without an address entry is carried as a
// bare-name hint.
func LoadRootHints(path string) ([]model.Hint, error) {
	zone, err := Load(path)
	if err != nil {
		return nil, err
	}

	nsRecords := zone.Lookup(".", model.TypeNS)
	if len(nsRecords) == 0 {
		return nil, fmt.Errorf("no root NS records in '%s'", path)
	}

	var hints []model.Hint

	for _, ns := range nsRecords {
		addresses := zone.Lookup(ns.Data, model.TypeA)
		if len(addresses) == 0 {
			hints = append(hints, model.Hint{Name: ns.Data})

			continue
		}

		for _, a := range addresses {
			ip := net.ParseIP(a.Data)
			if ip == nil {
				return nil, fmt.Errorf("invalid root server address '%s' for '%s'", a.Data, ns.Data)
			}

			hints = append(hints, model.Hint{Name: ns.Data, Addr: ip})
		}
	}

	return hints, nil
}
