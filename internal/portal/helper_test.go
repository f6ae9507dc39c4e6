package portal_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/Undertone0809/ecjtu/internal/domain"
	"github.com/Undertone0809/ecjtu/internal/portal"
)

const (
	testStudentID = "2022170101"
	testPassword  = "secret"
	testTicket    = "LT-20240301-abc"
)

// upstream is a fake CAS plus JWXT pair behind one test server. Behavior
// toggles let individual tests break specific hops of the flow.
type upstream struct {
	t   *testing.T
	srv *httptest.Server

	mu sync.Mutex

	brokenEnc    bool
	omitTicket   bool
	omitLocation bool

	logins        int
	scheduleDates []string
	scheduleHits  int
	scheduleFails int

	scheduleJSON string
	scorePage    string
	electivePage string
}

func newUpstream(t *testing.T) *upstream {
	u := &upstream{
		t:            t,
		scheduleJSON: `{"weekcalendarpojoList":[]}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/cas/loginPasswdEnc", u.handlePasswordEnc)
	mux.HandleFunc("/cas/login", u.handleCASLogin)
	mux.HandleFunc("/stuMag/Login_dcpLogin.action", u.handleJWXTLogin)
	mux.HandleFunc("/jwxt/landing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/Schedule/Weekcalendar_getTodayWeekcalendar.action", u.handleSchedule)
	mux.HandleFunc("/scoreQuery/stuScoreQue_getStuScore.action", u.handleScore)
	mux.HandleFunc("/infoQuery/XKStu_findTerm.action", u.handleElective)

	u.srv = httptest.NewServer(mux)
	t.Cleanup(u.srv.Close)
	return u
}

func (u *upstream) endpoints() portal.Endpoints {
	return portal.EndpointsForBases(u.srv.URL, u.srv.URL)
}

func (u *upstream) client(t *testing.T, opts ...portal.Option) *portal.Client {
	opts = append([]portal.Option{portal.WithEndpoints(u.endpoints())}, opts...)
	c, err := portal.New(opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func (u *upstream) loginCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.logins
}

func (u *upstream) handlePasswordEnc(w http.ResponseWriter, r *http.Request) {
	if u.brokenEnc {
		fmt.Fprint(w, `<html>maintenance</html>`)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	// Single-quoted pseudo-JSON, as the real provider emits.
	fmt.Fprintf(w, "{'passwordEnc': 'enc-%s'}", r.Form.Get("pwd"))
}

func (u *upstream) handleCASLogin(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Query().Get("service") != "":
		// CAS-to-JWXT redirect hop. Requires a live SSO session.
		if _, err := r.Cookie("CASTGC"); err != nil {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if u.omitLocation {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Location", "/jwxt/landing")
		w.WriteHeader(http.StatusFound)

	case r.Method == http.MethodGet:
		if u.omitTicket {
			fmt.Fprint(w, `<html><body><form></form></body></html>`)
			return
		}
		fmt.Fprintf(w, `<html><body><form><input type="hidden" name="lt" value="%s"/></form></body></html>`, testTicket)

	case r.Method == http.MethodPost:
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		ok := r.Form.Get("username") == testStudentID &&
			r.Form.Get("password") == "enc-"+testPassword &&
			r.Form.Get("lt") == testTicket
		if !ok {
			fmt.Fprint(w, `<html>bad credentials</html>`)
			return
		}
		u.mu.Lock()
		u.logins++
		u.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "CASTGC", Value: "TGT-1", Path: "/"})
		w.Header().Set("Location", "/cas/login?ok=1")
		w.WriteHeader(http.StatusFound)
	}
}

func (u *upstream) handleJWXTLogin(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "jw-1", Path: "/"})
	w.WriteHeader(http.StatusOK)
}

func (u *upstream) handleSchedule(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.scheduleHits++
	shouldFail := u.scheduleFails > 0
	if shouldFail {
		u.scheduleFails--
	}
	u.mu.Unlock()

	if shouldFail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	u.mu.Lock()
	u.scheduleDates = append(u.scheduleDates, r.Form.Get("date"))
	u.mu.Unlock()
	fmt.Fprint(w, u.scheduleJSON)
}

func (u *upstream) handleScore(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, u.scorePage)
}

func (u *upstream) handleElective(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, u.electivePage)
}

// ticketCookie is a snapshot holding just the SSO marker for the upstream's
// host, for seeding cookie-only clients.
func (u *upstream) ticketCookie() []domain.Cookie {
	parsed, err := url.Parse(u.srv.URL)
	if err != nil {
		u.t.Fatalf("parse upstream url: %v", err)
	}
	return []domain.Cookie{{Name: "CASTGC", Value: "TGT-1", Domain: parsed.Hostname()}}
}
