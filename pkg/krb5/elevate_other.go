//go:build !unix

package krb5

import cerr "github.com/cockroachdb/errors"

func execve(argv0 string, argv []string, envv []string) error {
	return cerr.Newf("re-executing %s is not supported on this platform", argv0)
}
