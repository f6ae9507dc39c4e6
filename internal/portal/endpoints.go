package portal

import (
	"net/url"
	"strings"
)

// Endpoints are the upstream URLs the client talks to. They are configurable
// so tests can point the whole flow at an httptest server; production use
// goes through DefaultEndpoints.
type Endpoints struct {
	// CASLogin is the identity-provider login page (GET for the form,
	// POST for credential submission).
	CASLogin string

	// PasswordEnc is the CAS password encryption endpoint.
	PasswordEnc string

	// JWXTLogin is the academic-records system's own login action. Hitting
	// it primes the JWXT session cookie before the CAS handoff.
	JWXTLogin string

	// CASToJWXT is the CAS redirect endpoint scoped to the JWXT service.
	// Its Location header completes the cross-domain bridge.
	CASToJWXT string

	// PortalService is the service URL submitted with the CAS login form.
	PortalService string

	// Schedule is the timetable query action (POST with a date field).
	Schedule string

	// ScoreQuery is the combined score/GPA page (GET).
	ScoreQuery string

	// ElectiveQuery is the elective enrollment query action (GET with a
	// term parameter).
	ElectiveQuery string
}

// DefaultEndpoints returns the production ECJTU URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		CASLogin:      "http://cas.ecjtu.edu.cn/cas/login",
		PasswordEnc:   "http://cas.ecjtu.edu.cn/cas/loginPasswdEnc",
		JWXTLogin:     "https://jwxt.ecjtu.edu.cn/stuMag/Login_dcpLogin.action",
		CASToJWXT:     "http://cas.ecjtu.edu.cn/cas/login?service=https%3A%2F%2Fjwxt.ecjtu.edu.cn%2FstuMag%2FLogin_dcpLogin.action",
		PortalService: "http://portal.ecjtu.edu.cn/dcp/index.jsp",
		Schedule:      "https://jwxt.ecjtu.edu.cn/Schedule/Weekcalendar_getTodayWeekcalendar.action",
		ScoreQuery:    "https://jwxt.ecjtu.edu.cn/scoreQuery/stuScoreQue_getStuScore.action?item=0401",
		ElectiveQuery: "https://jwxt.ecjtu.edu.cn/infoQuery/XKStu_findTerm.action",
	}
}

// EndpointsForBases derives a full endpoint set from alternate CAS and JWXT
// base URLs, keeping the production paths. Either base may be empty to keep
// the production host for that side. Used to point a deployment at a staging
// portal or a test double.
func EndpointsForBases(casBase, jwxtBase string) Endpoints {
	if casBase == "" && jwxtBase == "" {
		return DefaultEndpoints()
	}
	if casBase == "" {
		casBase = "http://cas.ecjtu.edu.cn"
	}
	if jwxtBase == "" {
		jwxtBase = "https://jwxt.ecjtu.edu.cn"
	}
	casBase = strings.TrimRight(casBase, "/")
	jwxtBase = strings.TrimRight(jwxtBase, "/")

	jwxtLogin := jwxtBase + "/stuMag/Login_dcpLogin.action"
	return Endpoints{
		CASLogin:      casBase + "/cas/login",
		PasswordEnc:   casBase + "/cas/loginPasswdEnc",
		JWXTLogin:     jwxtLogin,
		CASToJWXT:     casBase + "/cas/login?service=" + url.QueryEscape(jwxtLogin),
		PortalService: "http://portal.ecjtu.edu.cn/dcp/index.jsp",
		Schedule:      jwxtBase + "/Schedule/Weekcalendar_getTodayWeekcalendar.action",
		ScoreQuery:    jwxtBase + "/scoreQuery/stuScoreQue_getStuScore.action?item=0401",
		ElectiveQuery: jwxtBase + "/infoQuery/XKStu_findTerm.action",
	}
}

// cookieURLs returns the base URLs whose cookie jars make up a session
// snapshot: the identity provider and the records system.
func (e Endpoints) cookieURLs() []*url.URL {
	var out []*url.URL
	seen := map[string]bool{}
	for _, raw := range []string{e.CASLogin, e.JWXTLogin} {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || seen[u.Host] {
			continue
		}
		seen[u.Host] = true
		out = append(out, u)
	}
	return out
}

// casHost returns the identity provider's host for the Host header the
// upstream expects on login requests.
func (e Endpoints) casHost() string {
	u, err := url.Parse(e.CASLogin)
	if err != nil {
		return ""
	}
	return u.Host
}
