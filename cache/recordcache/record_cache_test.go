package recordcache_test

import (
	"fmt"
	"os"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"hintdns/cache/recordcache"
	. "hintdns/helpertest"
	"hintdns/model"
)

var _ = Describe("RecordCache", func() {
	var sut *recordcache.RecordCache

	BeforeEach(func() {
		sut = recordcache.New()
	})

	Describe("Lookup", func() {
		When("records were inserted", func() {
			BeforeEach(func() {
				sut.Insert(
					model.ResourceRecord{Name: "example.com", Type: model.TypeA, TTL: 300, Data: "192.0.2.1"},
					model.ResourceRecord{Name: "example.com", Type: model.TypeA, TTL: 300, Data: "192.0.2.2"},
					model.ResourceRecord{Name: "example.com", Type: model.TypeNS, TTL: 300, Data: "ns1.example.com"},
				)
			})

			It("should return only records of the requested type", func() {
				result := sut.Lookup("example.com", model.TypeA)

				Expect(result).Should(HaveLen(2))
				Expect(result[0].Data).Should(Equal("192.0.2.1"))
				Expect(result[1].Data).Should(Equal("192.0.2.2"))
			})

			It("should preserve insertion order per key", func() {
				sut.Insert(model.ResourceRecord{Name: "example.com", Type: model.TypeA, TTL: 300, Data: "192.0.2.3"})

				result := sut.Lookup("example.com", model.TypeA)

				Expect(result).Should(HaveLen(3))
				Expect(result[2].Data).Should(Equal("192.0.2.3"))
			})

			It("should normalize the queried name", func() {
				Expect(sut.Lookup("Example.COM.", model.TypeA)).Should(HaveLen(2))
			})

			It("should return nothing for an unknown name", func() {
				Expect(sut.Lookup("unknown.net", model.TypeA)).Should(BeEmpty())
			})
		})

		When("a record's lifetime elapsed", func() {
			BeforeEach(func() {
				sut.Insert(
					model.ResourceRecord{
						Name: "stale.example.com", Type: model.TypeA, TTL: 1,
						Data: "192.0.2.9", Created: time.Now().Add(-2 * time.Second),
					},
					model.ResourceRecord{
						Name: "stale.example.com", Type: model.TypeA, TTL: 300,
						Data: "192.0.2.10",
					},
				)
			})

			It("should not return the expired record", func() {
				result := sut.Lookup("stale.example.com", model.TypeA)

				Expect(result).Should(HaveLen(1))
				Expect(result[0].Data).Should(Equal("192.0.2.10"))
			})
		})

		When("a record is still within its lifetime", func() {
			It("should be returned until the TTL elapses", func() {
				sut.Insert(model.ResourceRecord{
					Name: "fresh.example.com", Type: model.TypeA, TTL: 300,
					Data: "192.0.2.4", Created: time.Now().Add(-299 * time.Second),
				})

				Expect(sut.Lookup("fresh.example.com", model.TypeA)).Should(HaveLen(1))
			})
		})

		When("a record has TTL zero", func() {
			It("should never be returned", func() {
				sut.Insert(model.ResourceRecord{
					Name: "zero.example.com", Type: model.TypeA, TTL: 0,
					Data: "192.0.2.5", Created: time.Now(),
				})

				Expect(sut.Lookup("zero.example.com", model.TypeA)).Should(BeEmpty())
			})
		})
	})

	Describe("LookupSuffixNS", func() {
		When("NS records exist for an ancestor domain", func() {
			BeforeEach(func() {
				sut.Insert(
					model.ResourceRecord{Name: "example.com", Type: model.TypeNS, TTL: 300, Data: "ns1.example.com"},
					model.ResourceRecord{Name: "example.com", Type: model.TypeNS, TTL: 300, Data: "ns2.example.com"},
					model.ResourceRecord{Name: "com", Type: model.TypeNS, TTL: 300, Data: "a.gtld-servers.net"},
				)
			})

			It("should return the closest ancestor match", func() {
				domain, records := sut.LookupSuffixNS("www.a.example.com")

				Expect(domain).Should(Equal("example.com"))
				Expect(records).Should(HaveLen(2))
				Expect(records[0].Data).Should(Equal("ns1.example.com"))
			})

			It("should fall back to a higher level without a closer match", func() {
				domain, records := sut.LookupSuffixNS("other.org")

				Expect(domain).Should(BeEmpty())
				Expect(records).Should(BeEmpty())

				domain, records = sut.LookupSuffixNS("www.shop.com")

				Expect(domain).Should(Equal("com"))
				Expect(records).Should(HaveLen(1))
			})
		})

		When("no NS records exist at any level", func() {
			It("should return an empty result", func() {
				domain, records := sut.LookupSuffixNS("www.example.net")

				Expect(domain).Should(BeEmpty())
				Expect(records).Should(BeEmpty())
			})
		})
	})

	Describe("concurrent usage", func() {
		It("should not lose updates on concurrent inserts and lookups", func() {
			const workers = 20

			var wg sync.WaitGroup

			for i := 0; i < workers; i++ {
				i := i
				wg.Add(1)

				go func() {
					defer wg.Done()

					name := fmt.Sprintf("host%d.example.com", i)
					sut.Insert(model.ResourceRecord{Name: name, Type: model.TypeA, TTL: 300, Data: "192.0.2.1"})
					sut.Lookup(name, model.TypeA)
					sut.LookupSuffixNS(name)
				}()
			}

			wg.Wait()

			for i := 0; i < workers; i++ {
				Expect(sut.Lookup(fmt.Sprintf("host%d.example.com", i), model.TypeA)).Should(HaveLen(1))
			}
		})
	})

	Describe("persistence", func() {
		It("should restore persisted records", func() {
			sut.Insert(
				model.ResourceRecord{Name: "example.com", Type: model.TypeA, TTL: 300, Data: "192.0.2.1"},
				model.ResourceRecord{Name: "example.com", Type: model.TypeCNAME, TTL: 300, Data: "www.example.com"},
			)

			file := TempFile("")
			defer os.Remove(file.Name())

			Expect(sut.Persist(file.Name())).Should(Succeed())

			restored := recordcache.New()
			Expect(restored.Load(file.Name())).Should(Succeed())

			Expect(restored.Lookup("example.com", model.TypeA)).Should(HaveLen(1))
			Expect(restored.Lookup("example.com", model.TypeCNAME)).Should(HaveLen(1))
		})

		It("should drop expired records at load time", func() {
			sut.Insert(
				model.ResourceRecord{
					Name: "stale.example.com", Type: model.TypeA, TTL: 1,
					Data: "192.0.2.9", Created: time.Now().Add(-time.Hour),
				},
				model.ResourceRecord{Name: "example.com", Type: model.TypeA, TTL: 3600, Data: "192.0.2.1"},
			)

			file := TempFile("")
			defer os.Remove(file.Name())

			Expect(sut.Persist(file.Name())).Should(Succeed())

			restored := recordcache.New()
			Expect(restored.Load(file.Name())).Should(Succeed())

			Expect(restored.TotalCount()).Should(Equal(1))
		})

		It("should return an error for a malformed file and stay empty", func() {
			file := TempFile("this is not json")
			defer os.Remove(file.Name())

			Expect(sut.Load(file.Name())).Should(HaveOccurred())
			Expect(sut.TotalCount()).Should(BeZero())
		})

		It("should return an error for a missing file", func() {
			Expect(sut.Load("/path/does/not/exist")).Should(HaveOccurred())
		})
	})

	Describe("Clear", func() {
		It("should remove all entries", func() {
			sut.Insert(model.ResourceRecord{Name: "example.com", Type: model.TypeA, TTL: 300, Data: "192.0.2.1"})

			sut.Clear()

			Expect(sut.TotalCount()).Should(BeZero())
		})
	})
})
