package zone_test

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "hintdns/helpertest"
	"hintdns/model"
	"hintdns/zone"
)

var _ = Describe("Zone", func() {
	Describe("Load", func() {
		When("the file is well formed", func() {
			var sut *zone.Zone

			BeforeEach(func() {
				file := TempFile(`; served zone
example.com.      3600 NS    ns1.example.com.
ns1.example.com.  3600 A     192.0.2.53
www.example.com.  3600 CNAME web.example.com. ; alias
web.example.com.  3600 A     192.0.2.80
web.example.com.  3600 A     192.0.2.81
`)
				DeferCleanup(os.Remove, file.Name())

				var err error
				sut, err = zone.Load(file.Name())
				Expect(err).Should(Succeed())
			})

			It("should look up records by name and type", func() {
				result := sut.Lookup("web.example.com", model.TypeA)

				Expect(result).Should(HaveLen(2))
				Expect(result[0].Data).Should(Equal("192.0.2.80"))
				Expect(result[1].Data).Should(Equal("192.0.2.81"))
			})

			It("should normalize names of CNAME and NS targets", func() {
				result := sut.Lookup("www.example.com", model.TypeCNAME)

				Expect(result).Should(HaveLen(1))
				Expect(result[0].Data).Should(Equal("web.example.com"))
			})

			It("should find delegation points by suffix search", func() {
				authorities, additionals := sut.LookupSuffixNS("www.deep.example.com")

				Expect(authorities).Should(HaveLen(1))
				Expect(authorities[0].Data).Should(Equal("ns1.example.com"))
				Expect(additionals).Should(HaveLen(1))
				Expect(additionals[0].Data).Should(Equal("192.0.2.53"))
			})

			It("should return an empty delegation outside the zone", func() {
				authorities, additionals := sut.LookupSuffixNS("www.other.net")

				Expect(authorities).Should(BeEmpty())
				Expect(additionals).Should(BeEmpty())
			})
		})

		When("the file is malformed", func() {
			It("should fail on a wrong field count", func() {
				file := TempFile("example.com. 3600 A")
				DeferCleanup(os.Remove, file.Name())

				_, err := zone.Load(file.Name())
				Expect(err).Should(HaveOccurred())
			})

			It("should fail on an unsupported record type", func() {
				file := TempFile("example.com. 3600 MX mail.example.com.")
				DeferCleanup(os.Remove, file.Name())

				_, err := zone.Load(file.Name())
				Expect(err).Should(MatchError(ContainSubstring("unsupported record type")))
			})

			It("should fail on an invalid ttl", func() {
				file := TempFile("example.com. soon A 192.0.2.1")
				DeferCleanup(os.Remove, file.Name())

				_, err := zone.Load(file.Name())
				Expect(err).Should(MatchError(ContainSubstring("invalid ttl")))
			})
		})

		When("the file does not exist", func() {
			It("should fail", func() {
				_, err := zone.Load("/path/does/not/exist")
				Expect(err).Should(HaveOccurred())
			})
		})
	})
})

var _ = Describe("LoadRootHints", func() {
	When("the hints file contains root servers", func() {
		It("should resolve the server names against the file's A records", func() {
			file := TempFile(`.                     3600000 NS a.root-servers.net.
.                     3600000 NS b.root-servers.net.
a.root-servers.net.   3600000 A  198.41.0.4
`)
			DeferCleanup(os.Remove, file.Name())

			hints, err := zone.LoadRootHints(file.Name())

			Expect(err).Should(Succeed())
			Expect(hints).Should(HaveLen(2))
			Expect(hints[0].Resolved()).Should(BeTrue())
			Expect(hints[0].Addr.String()).Should(Equal("198.41.0.4"))
			Expect(hints[1].Resolved()).Should(BeFalse())
			Expect(hints[1].Name).Should(Equal("b.root-servers.net"))
		})
	})

	When("the hints file contains no root NS records", func() {
		It("should fail", func() {
			file := TempFile("example.com. 3600 A 192.0.2.1")
			DeferCleanup(os.Remove, file.Name())

			_, err := zone.LoadRootHints(file.Name())
			Expect(err).Should(MatchError(ContainSubstring("no root NS records")))
		})
	})
})
