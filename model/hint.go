package model

import "net"

// Hint is a candidate name server to query next: either an already
// resolved address or, lacking one, a bare server name.
type Hint struct {
	Name string
	Addr net.IP
}

// Resolved reports whether the hint carries an address.
func (h Hint) Resolved() bool {
	return h.Addr != nil
}

func (h Hint) String() string {
	if h.Resolved() {
		return h.Addr.String()
	}

	return h.Name
}
