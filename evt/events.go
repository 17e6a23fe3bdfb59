package evt

import (
	"github.com/asaskevich/EventBus"
)

const (
	// ApplicationStarted fires on start of the application. Parameter: version, build time
	ApplicationStarted = "application:started"

	// CachingResultCacheHit fires, if a query result was found in the record cache, Parameter: domain name
	CachingResultCacheHit = "caching:cacheHit"

	// CachingResultCacheMiss fires, if a query result was not found in the record cache, Parameter: domain name
	CachingResultCacheMiss = "caching:cacheMiss"

	// CachingResultCacheChanged fires if the record cache was changed, Parameter: new cache size
	CachingResultCacheChanged = "caching:resultCacheChanged"

	// ServerQueryServed fires after a response was sent, Parameter: rcode as string
	ServerQueryServed = "server:queryServed"
)

// nolint
var evtBus = EventBus.New()

func Bus() EventBus.Bus {
	return evtBus
}
