package portal

import (
	"net/http"
	"net/url"

	"github.com/Undertone0809/ecjtu/internal/domain"
)

// Cookies snapshots the session cookies for both upstream hosts so the
// session can be persisted and later rebuilt without re-authenticating.
func (c *Client) Cookies() []domain.Cookie {
	var out []domain.Cookie
	seen := map[string]bool{}
	for _, u := range c.endpoints.cookieURLs() {
		for _, ck := range c.jar.Cookies(u) {
			key := u.Hostname() + "\x00" + ck.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, domain.Cookie{
				Name:   ck.Name,
				Value:  ck.Value,
				Domain: u.Hostname(),
			})
		}
	}
	return out
}

// SetCookies restores a previously snapshotted session into the jar. Cookies
// are grouped per domain and installed at the domain root so they match every
// path under it.
func (c *Client) SetCookies(cookies []domain.Cookie) {
	byDomain := map[string][]*http.Cookie{}
	for _, ck := range cookies {
		byDomain[ck.Domain] = append(byDomain[ck.Domain], &http.Cookie{
			Name:  ck.Name,
			Value: ck.Value,
			Path:  "/",
		})
	}
	for domainName, cks := range byDomain {
		for _, scheme := range []string{"https", "http"} {
			u := &url.URL{Scheme: scheme, Host: domainName, Path: "/"}
			c.jar.SetCookies(u, cks)
		}
	}
}

// hasTicketGrant reports whether the jar still holds the CAS ticket-granting
// cookie, the marker for a live single-sign-on session.
func (c *Client) hasTicketGrant() bool {
	u, err := url.Parse(c.endpoints.CASLogin)
	if err != nil {
		return false
	}
	for _, ck := range c.jar.Cookies(u) {
		if ck.Name == ticketGrantCookie {
			return true
		}
	}
	return false
}
