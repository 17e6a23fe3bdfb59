// Package instanceid identifies one process lifetime of the server. The
// identity is logged at startup and served by the HTTP API.
package instanceid

import (
	"github.com/google/uuid"
)

// nolint:gochecknoglobals
var instanceID = uuid.New()

// String returns the identity of this instance
func String() string {
	return instanceID.String()
}
