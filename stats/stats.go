package stats

import (
	"strings"
	"sync"
	"time"

	"hintdns/util"
)

const (
	defaultMaxCount = 50
	retentionHours  = 24
	hourFormat      = "2006010215"
)

// nolint
var now = time.Now

// Aggregator counts string keys in hourly windows and keeps the last
// 24 hours of them. Used to track the most queried domains and the
// distribution of response codes without holding a full query log.
type Aggregator struct {
	Name string

	lock        sync.Mutex
	maxCount    int
	currentHour string
	// hour -> ( key -> count ), finished windows only
	hourResults map[string]map[string]int
	stageData   map[string]int
}

// NewAggregator returns a new aggregator with the default result size
func NewAggregator(name string) *Aggregator {
	return NewAggregatorWithMax(name, defaultMaxCount)
}

// NewAggregatorWithMax returns a new aggregator which reports at most
// maxCount entries
func NewAggregatorWithMax(name string, maxCount uint) *Aggregator {
	return &Aggregator{
		Name:        name,
		maxCount:    int(maxCount),
		currentHour: currentHour(),
		hourResults: make(map[string]map[string]int),
		stageData:   make(map[string]int),
	}
}

// Put counts one occurrence of key. Empty keys are ignored.
func (s *Aggregator) Put(key string) {
	key = strings.TrimSpace(key)
	if len(key) == 0 {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.hourSwitch()
	s.stageData[key]++
}

// AggregateResult sums all retained hourly windows and returns the
// maxCount keys with the highest counts.
func (s *Aggregator) AggregateResult() map[string]int {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.hourSwitch()

	result := make(map[string]int)

	for _, window := range s.hourResults {
		for k, v := range window {
			result[k] += v
		}
	}

	return getMaxValues(result, s.maxCount)
}

// hourSwitch seals the staged window when the hour changed and drops
// windows older than the retention period. Caller holds the lock.
func (s *Aggregator) hourSwitch() {
	hour := currentHour()
	if hour == s.currentHour {
		return
	}

	s.hourResults[s.currentHour] = getMaxValues(s.stageData, s.maxCount*2)

	for k := range s.hourResults {
		h, _ := time.Parse(hourFormat, k)

		if h.Before(now().Add(-retentionHours * time.Hour)) {
			delete(s.hourResults, k)
		}
	}

	s.currentHour = hour
	s.stageData = make(map[string]int)
}

func currentHour() string {
	return now().Format(hourFormat)
}

func getMaxValues(in map[string]int, maxCount int) map[string]int {
	if len(in) <= maxCount {
		return in
	}

	result := make(map[string]int, maxCount)
	i := 0

	util.IterateValueSorted(in, func(k string, v int) {
		if i < maxCount {
			result[k] = v
		}
		i++
	})

	return result
}
