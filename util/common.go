package util

import (
	"sort"

	"hintdns/log"
)

// IterateValueSorted iterates over the map entries sorted by value in
// descending order, ties broken by key.
func IterateValueSorted(in map[string]int, fn func(string, int)) {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		if in[keys[i]] != in[keys[j]] {
			return in[keys[i]] > in[keys[j]]
		}

		return keys[i] < keys[j]
	})

	for _, k := range keys {
		fn(k, in[k])
	}
}

// LogOnError logs the message only if error is not nil
func LogOnError(message string, err error) {
	if err != nil {
		log.Log().Error(message, err)
	}
}

// FatalOnError logs the message only if error is not nil and exits the program execution
func FatalOnError(message string, err error) {
	if err != nil {
		log.Log().Fatal(message, err)
	}
}
