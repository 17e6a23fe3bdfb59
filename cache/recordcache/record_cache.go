package recordcache

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"hintdns/model"
	"hintdns/util"
)

// RecordCache is the record store shared by all concurrent resolutions.
// Records are kept per owner name in insertion order; expired records
// are purged lazily on lookup. All operations are atomic with respect
// to each other.
type RecordCache struct {
	lock    sync.RWMutex
	records map[string][]model.ResourceRecord
}

func New() *RecordCache {
	return &RecordCache{
		records: make(map[string][]model.ResourceRecord),
	}
}

// Lookup returns all non-expired records of the given type owned by
// name. Expired records under that name are removed as a side effect.
func (c *RecordCache) Lookup(name string, rType model.RecordType) []model.ResourceRecord {
	name = util.NormalizeDomain(name)

	c.lock.Lock()
	defer c.lock.Unlock()

	return c.lookup(name, rType)
}

// LookupSuffixNS walks name's labels from most specific toward, but
// excluding, the root and returns the first ancestor domain owning at
// least one valid NS record, together with those records.
func (c *RecordCache) LookupSuffixNS(name string) (string, []model.ResourceRecord) {
	c.lock.Lock()
	defer c.lock.Unlock()

	for _, domain := range util.Suffixes(name) {
		if records := c.lookup(domain, model.TypeNS); len(records) > 0 {
			return domain, records
		}
	}

	return "", nil
}

// lookup implements Lookup, the caller must hold the write lock.
func (c *RecordCache) lookup(name string, rType model.RecordType) []model.ResourceRecord {
	recordSet, found := c.records[name]
	if !found {
		return nil
	}

	recordSet = purgeExpired(recordSet, time.Now())
	if len(recordSet) == 0 {
		delete(c.records, name)

		return nil
	}

	c.records[name] = recordSet

	var result []model.ResourceRecord

	for _, record := range recordSet {
		if record.Type == rType {
			result = append(result, record)
		}
	}

	return result
}

// Insert appends the records under their owner names. Records without a
// creation timestamp are stamped with the current time. Duplicates are
// not collapsed, expiry drops stale entries eventually.
func (c *RecordCache) Insert(records ...model.ResourceRecord) {
	now := time.Now()

	c.lock.Lock()
	defer c.lock.Unlock()

	for _, record := range records {
		record.Name = util.NormalizeDomain(record.Name)
		if record.Created.IsZero() {
			record.Created = now
		}

		c.records[record.Name] = append(c.records[record.Name], record)
	}
}

// TotalCount returns the number of stored records, including records
// that expired since their last lookup.
func (c *RecordCache) TotalCount() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	count := 0
	for _, recordSet := range c.records {
		count += len(recordSet)
	}

	return count
}

// Clear removes all cache entries
func (c *RecordCache) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.records = make(map[string][]model.ResourceRecord)
}

// Load replaces the cache content with the records persisted at path,
// dropping records that expired in the meantime. On failure the cache
// stays empty and the error is returned so the caller can warn.
func (c *RecordCache) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("can't read cache file: %w", err)
	}

	var records []model.ResourceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("malformed cache file '%s': %w", path, err)
	}

	now := time.Now()

	c.lock.Lock()
	defer c.lock.Unlock()

	c.records = make(map[string][]model.ResourceRecord)

	for _, record := range records {
		if !record.IsValid(now) {
			continue
		}

		record.Name = util.NormalizeDomain(record.Name)
		c.records[record.Name] = append(c.records[record.Name], record)
	}

	return nil
}

// Persist writes the full cache content to path as a flat JSON record
// list.
func (c *RecordCache) Persist(path string) error {
	c.lock.RLock()

	records := make([]model.ResourceRecord, 0)
	for _, recordSet := range c.records {
		records = append(records, recordSet...)
	}

	c.lock.RUnlock()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("can't serialize cache: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("can't write cache file: %w", err)
	}

	return nil
}

func purgeExpired(recordSet []model.ResourceRecord, now time.Time) []model.ResourceRecord {
	valid := recordSet[:0]

	for _, record := range recordSet {
		if record.IsValid(now) {
			valid = append(valid, record)
		}
	}

	return valid
}
