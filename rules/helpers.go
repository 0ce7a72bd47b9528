package rules

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/filterkit/elemhide/filterutil"
)

// loadDomains loads cosmetic rules domains
// domains is the list of domains
// sep is the separator character, for cosmetic rules it is ','.
func loadDomains(domains string, sep string) (permittedDomains []string, restrictedDomains []string, err error) {
	if domains == "" {
		err = errors.New("no domains specified")

		return
	}

	list := strings.Split(domains, sep)
	for _, d := range list {
		restricted := false
		if strings.HasPrefix(d, "~") {
			restricted = true
			d = d[1:]
		}

		if !filterutil.IsDomainName(d) && !strings.HasSuffix(d, ".*") {
			err = fmt.Errorf("invalid domain specified: %s", domains)

			return
		}

		if restricted {
			restrictedDomains = append(restrictedDomains, d)
		} else {
			permittedDomains = append(permittedDomains, d)
		}
	}

	return permittedDomains, restrictedDomains, nil
}

// isDomainOrSubdomainOfAny checks if "domain" is domain or subdomain of any of the "domains"
func isDomainOrSubdomainOfAny(domain string, domains []string) bool {
	for _, d := range domains {
		if strings.HasSuffix(d, ".*") {
			// A pattern like "google.*" will match any "google.TLD"
			// domain or subdomain
			withoutWildcard := d[:len(d)-1]

			if strings.HasPrefix(domain, withoutWildcard) ||
				strings.Contains(domain, "."+withoutWildcard) {
				tld, icann := publicsuffix.PublicSuffix(domain)

				// The domain's TLD must be one of the public suffixes
				if tld != "" && icann &&
					strings.HasSuffix(domain, withoutWildcard+tld) {
					return true
				}
			}
		} else {
			if domain == d || strings.HasSuffix(domain, "."+d) {
				return true
			}
		}
	}

	return false
}

// containsString checks if the string is present in the list
func containsString(list []string, str string) bool {
	for _, v := range list {
		if v == str {
			return true
		}
	}

	return false
}
