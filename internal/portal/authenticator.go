package portal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// userAgent mirrors a desktop browser; the upstream rejects obviously
	// non-browser clients.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

	// ticketGrantCookie is the CAS single-sign-on session marker. Its
	// presence after the credential POST is the only reliable success
	// signal; its absence later means the session has lapsed.
	ticketGrantCookie = "CASTGC"
)

// Authenticator runs the multi-hop CAS to JWXT login sequence against a
// shared cookie jar. Both http clients must wrap the same jar: redirect
// follows redirects, bare suppresses them so intermediate Set-Cookie and
// Location headers stay observable.
type Authenticator struct {
	endpoints Endpoints
	enc       *PasswordEncryptor
	redirect  *http.Client
	bare      *http.Client
	logger    *slog.Logger
}

// Login authenticates the student against CAS and bridges the resulting
// single-sign-on session into the records system. On success the jar holds
// cookies for both hosts and resource queries will succeed.
func (a *Authenticator) Login(ctx context.Context, studentID, password string) error {
	log := a.logger.With(slog.String("student_id", studentID))
	log.InfoContext(ctx, "logging in to cas")

	encPwd, err := a.enc.Encrypt(ctx, password)
	if err != nil {
		return err
	}

	ticket, err := a.fetchLoginTicket(ctx)
	if err != nil {
		return err
	}

	if err := a.submitCredentials(ctx, studentID, encPwd, ticket); err != nil {
		return err
	}

	if err := a.bridgeToRecords(ctx); err != nil {
		return err
	}

	log.InfoContext(ctx, "login complete")
	return nil
}

// fetchLoginTicket loads the CAS login page and extracts the one-time "lt"
// form field.
func (a *Authenticator) fetchLoginTicket(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoints.CASLogin, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.redirect.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLoginTicket, err)
	}
	ticket, ok := doc.Find(`input[name="lt"]`).First().Attr("value")
	if !ok || ticket == "" {
		return "", ErrLoginTicket
	}
	return ticket, nil
}

// submitCredentials posts the login form with redirects suppressed and
// verifies the ticket-granting cookie was granted.
func (a *Authenticator) submitCredentials(ctx context.Context, studentID, encPwd, ticket string) error {
	form := url.Values{
		"username": {studentID},
		"password": {encPwd},
		"lt":       {ticket},
		"service":  {a.endpoints.PortalService},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoints.CASLogin, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", a.endpoints.CASLogin)
	if host := a.endpoints.casHost(); host != "" {
		req.Host = host
	}

	resp, err := a.bare.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	for _, ck := range resp.Cookies() {
		if ck.Name == ticketGrantCookie {
			return nil
		}
	}
	return ErrInvalidCredentials
}

// bridgeToRecords carries the CAS session across to the records system:
// prime its own session cookie, ask CAS for the service redirect, then follow
// the handed-back location to completion.
func (a *Authenticator) bridgeToRecords(ctx context.Context) error {
	if _, err := a.getBare(ctx, a.endpoints.JWXTLogin); err != nil {
		return err
	}

	resp, err := a.getBare(ctx, a.endpoints.CASToJWXT)
	if err != nil {
		return err
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return &ServiceLoginError{StatusCode: resp.StatusCode}
	}
	target, err := a.resolveLocation(location)
	if err != nil {
		return &ServiceLoginError{StatusCode: resp.StatusCode}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	final, err := a.redirect.Do(req)
	if err != nil {
		return err
	}
	defer final.Body.Close()
	io.Copy(io.Discard, final.Body)

	if final.StatusCode != http.StatusOK {
		return &ServiceLoginError{StatusCode: final.StatusCode}
	}
	return nil
}

func (a *Authenticator) getBare(ctx context.Context, rawurl string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := a.bare.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp, nil
}

// resolveLocation absolutizes a possibly relative Location header against the
// CAS redirect endpoint.
func (a *Authenticator) resolveLocation(location string) (string, error) {
	loc, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	if loc.IsAbs() {
		return loc.String(), nil
	}
	base, err := url.Parse(a.endpoints.CASToJWXT)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(loc).String(), nil
}
