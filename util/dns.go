package util

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// NormalizeDomain brings a domain name into the canonical form used as
// map key everywhere: lowercase, no trailing dot. The root name
// normalizes to the empty string.
func NormalizeDomain(name string) string {
	return strings.TrimSuffix(strings.ToLower(name), ".")
}

// Suffixes returns the domain itself and all its ancestor domains up to,
// but excluding, the root, ordered from most specific to least specific.
//
// "www.example.com" -> ["www.example.com", "example.com", "com"]
func Suffixes(name string) []string {
	name = NormalizeDomain(name)
	if name == "" {
		return nil
	}

	labels := strings.Split(name, ".")
	result := make([]string, 0, len(labels))

	for i := range labels {
		result = append(result, strings.Join(labels[i:], "."))
	}

	return result
}

func ExtractDomain(question dns.Question) string {
	return NormalizeDomain(question.Name)
}

func QuestionToString(questions []dns.Question) string {
	result := make([]string, len(questions))
	for i, question := range questions {
		result[i] = fmt.Sprintf("%s (%s)", dns.TypeToString[question.Qtype], question.Name)
	}

	return strings.Join(result, ", ")
}

func AnswerToString(answer []dns.RR) string {
	answers := make([]string, len(answer))

	for i, record := range answer {
		switch v := record.(type) {
		case *dns.A:
			answers[i] = fmt.Sprintf("A (%s)", v.A)
		case *dns.CNAME:
			answers[i] = fmt.Sprintf("CNAME (%s)", v.Target)
		case *dns.NS:
			answers[i] = fmt.Sprintf("NS (%s)", v.Ns)
		default:
			answers[i] = fmt.Sprint(record)
		}
	}

	return strings.Join(answers, ", ")
}

func NewMsgWithQuestion(question string, mType uint16) *dns.Msg {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(question), mType)

	return msg
}
