package krb5

import (
	"strings"
	"text/template"
)

var krb5Template = template.Must(template.New("krb5.conf").Parse(`[libdefaults]
    default_realm = {{ .Realm }}
    dns_lookup_realm = false
    dns_lookup_kdc = {{ .DNSLookupKDC }}
    ticket_lifetime = 24h
    renew_lifetime = 7d
    forwardable = true
    proxiable = true
    rdns = false

[realms]
    {{ .Realm }} = {
        kdc = {{ .KDC }}
        admin_server = {{ .AdminServer }}
    }

[domain_realm]
    {{ .Domain }} = {{ .Realm }}
    .{{ .Domain }} = {{ .Realm }}
`))

type templateData struct {
	Realm        string
	Domain       string
	KDC          string
	AdminServer  string
	DNSLookupKDC bool
}

// Render produces the krb5.conf document for req. It depends on nothing but
// req, so identical requests render byte-identical documents.
func Render(req ConfigRequest) RenderedConfig {
	data := templateData{
		Realm:        req.Realm(),
		Domain:       req.Domain(),
		KDC:          req.KDCHost(),
		AdminServer:  req.KDCHost(),
		DNSLookupKDC: req.DNSLookupKDC(),
	}

	var b strings.Builder
	// Only string and bool fields are referenced, so Execute cannot fail.
	if err := krb5Template.Execute(&b, data); err != nil {
		panic("krb5: render template: " + err.Error())
	}
	return RenderedConfig(b.String())
}
