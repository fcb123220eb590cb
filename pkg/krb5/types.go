// Package krb5 renders and installs a Kerberos client configuration
// (krb5.conf) for an Active Directory domain.
package krb5

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_err"
	cerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// DefaultPath is where Kerberos libraries look for their configuration.
const DefaultPath = "/etc/krb5.conf"

// ConfigRequest is the input of a single invocation. It is never mutated.
type ConfigRequest struct {
	DomainFQDN string `validate:"required,hostname_rfc1123"`
	DCName     string `validate:"required,hostname_rfc1123"`
	// KDCOverrideIP replaces the DNS-derived KDC and admin server address.
	KDCOverrideIP string `validate:"omitempty,ip"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// NewConfigRequest trims its inputs and validates the result.
func NewConfigRequest(domainFQDN, dcName, kdcOverrideIP string) (ConfigRequest, error) {
	req := ConfigRequest{
		DomainFQDN:    strings.TrimSpace(domainFQDN),
		DCName:        strings.TrimSpace(dcName),
		KDCOverrideIP: strings.TrimSpace(kdcOverrideIP),
	}
	return req, req.Validate()
}

// Validate checks that domain and DC name are present hostnames and that an
// override, if any, is a literal IP address.
func (r ConfigRequest) Validate() error {
	err := requestValidator().Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !cerr.As(err, &fieldErrs) {
		return eos_err.NewInternalError("validate configuration request", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describeFieldError(fe))
	}
	return eos_err.NewValidationError(
		"invalid arguments: "+strings.Join(problems, "; "),
		"Usage: krb5setup [flags] <domain_fqdn> <dc_name>",
		"Example: krb5setup -k 10.129.11.92 nanocorp.htb dc01",
	)
}

func describeFieldError(fe validator.FieldError) string {
	name := map[string]string{
		"DomainFQDN":    "domain_fqdn",
		"DCName":        "dc_name",
		"KDCOverrideIP": "--ip-kdc",
	}[fe.Field()]

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "ip":
		return fmt.Sprintf("%s %q is not an IP address", name, fe.Value())
	case "hostname_rfc1123":
		return fmt.Sprintf("%s %q is not a valid host name", name, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}

// Realm is the uppercased domain FQDN.
func (r ConfigRequest) Realm() string {
	return strings.ToUpper(r.DomainFQDN)
}

// Domain is the lowercased domain FQDN.
func (r ConfigRequest) Domain() string {
	return strings.ToLower(r.DomainFQDN)
}

// KDCHost is the override IP when set, otherwise "<dc>.<domain>" in lowercase.
func (r ConfigRequest) KDCHost() string {
	if r.KDCOverrideIP != "" {
		return r.KDCOverrideIP
	}
	return strings.ToLower(r.DCName) + "." + r.Domain()
}

// DNSLookupKDC is disabled when the KDC is pinned to an IP.
func (r ConfigRequest) DNSLookupKDC() bool {
	return r.KDCOverrideIP == ""
}

// RenderedConfig is a complete krb5.conf document.
type RenderedConfig string

func (c RenderedConfig) String() string { return string(c) }

// Bytes returns the document as written to disk.
func (c RenderedConfig) Bytes() []byte { return []byte(c) }

// BackupRecord describes a copy of the previous configuration. It is kept on
// disk after the run.
type BackupRecord struct {
	OriginalPath string
	BackupPath   string
	CreatedAt    time.Time
}
