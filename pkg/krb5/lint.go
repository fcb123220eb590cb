package krb5

import (
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
	krb5config "github.com/jcmturner/gokrb5/v8/config"
)

// Summary is what a Kerberos client library reads out of a krb5.conf.
type Summary struct {
	DefaultRealm   string
	KDCs           []string
	AdminServers   []string
	DNSLookupKDC   bool
	DNSLookupRealm bool
	TicketLifetime time.Duration
	RenewLifetime  time.Duration
	Forwardable    bool
	Proxiable      bool
	RDNS           bool
	DomainRealm    map[string]string
	// Unsupported is set when the file uses directives gokrb5 skips, such as includes.
	Unsupported string
}

// Lint parses doc with gokrb5 and summarises the default realm. It fails when
// the document does not parse or names a default realm with no KDC.
func Lint(doc string) (*Summary, error) {
	cfg, err := krb5config.NewFromString(doc)

	var unsupported krb5config.UnsupportedDirective
	switch {
	case err == nil:
	case cerr.As(err, &unsupported) && cfg != nil:
	default:
		return nil, cerr.Wrap(err, "parse krb5.conf")
	}

	s := &Summary{
		DefaultRealm:   cfg.LibDefaults.DefaultRealm,
		DNSLookupKDC:   cfg.LibDefaults.DNSLookupKDC,
		DNSLookupRealm: cfg.LibDefaults.DNSLookupRealm,
		TicketLifetime: cfg.LibDefaults.TicketLifetime,
		RenewLifetime:  cfg.LibDefaults.RenewLifetime,
		Forwardable:    cfg.LibDefaults.Forwardable,
		Proxiable:      cfg.LibDefaults.Proxiable,
		RDNS:           cfg.LibDefaults.RDNS,
		DomainRealm:    map[string]string(cfg.DomainRealm),
	}
	if err != nil {
		s.Unsupported = err.Error()
	}

	if s.DefaultRealm == "" {
		return s, cerr.New("no default_realm in [libdefaults]")
	}

	for _, realm := range cfg.Realms {
		if realm.Realm != s.DefaultRealm {
			continue
		}
		for _, kdc := range realm.KDC {
			s.KDCs = append(s.KDCs, stripPort(kdc))
		}
		for _, admin := range realm.AdminServer {
			s.AdminServers = append(s.AdminServers, stripPort(admin))
		}
	}

	if len(s.KDCs) == 0 && !s.DNSLookupKDC {
		return s, cerr.Newf("realm %s has no kdc and dns_lookup_kdc is disabled", s.DefaultRealm)
	}
	return s, nil
}

// gokrb5 appends the default port to bare KDC hosts.
func stripPort(hostport string) string {
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport
	}
	return host
}

// Matches reports the first field where the summary disagrees with req.
func (s *Summary) Matches(req ConfigRequest) error {
	if s.DefaultRealm != req.Realm() {
		return cerr.Newf("default_realm is %q, expected %q", s.DefaultRealm, req.Realm())
	}
	if len(s.KDCs) != 1 || s.KDCs[0] != req.KDCHost() {
		return cerr.Newf("kdc is %v, expected %q", s.KDCs, req.KDCHost())
	}
	if len(s.AdminServers) != 1 || s.AdminServers[0] != req.KDCHost() {
		return cerr.Newf("admin_server is %v, expected %q", s.AdminServers, req.KDCHost())
	}
	if s.DNSLookupKDC != req.DNSLookupKDC() {
		return cerr.Newf("dns_lookup_kdc is %t, expected %t", s.DNSLookupKDC, req.DNSLookupKDC())
	}
	for _, domain := range []string{req.Domain(), "." + req.Domain()} {
		if s.DomainRealm[domain] != req.Realm() {
			return cerr.Newf("domain_realm %s maps to %q, expected %q", domain, s.DomainRealm[domain], req.Realm())
		}
	}
	return nil
}

// String is the one-line form printed under the current configuration.
func (s *Summary) String() string {
	kdcs := "via DNS"
	if len(s.KDCs) > 0 {
		kdcs = strings.Join(s.KDCs, ", ")
	}

	domains := make([]string, 0, len(s.DomainRealm))
	for d := range s.DomainRealm {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	return fmt.Sprintf("realm=%s kdc=%s dns_lookup_kdc=%t domains=%s",
		s.DefaultRealm, kdcs, s.DNSLookupKDC, strings.Join(domains, ","))
}
