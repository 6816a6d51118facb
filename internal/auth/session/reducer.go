package session

import "github.com/victorgomez09/healthflow/internal/auth/models"

// Session is the client-held record of the current identity and credential.
// IsAuthenticated is always User != nil && Token != "".
type Session struct {
	User            *models.User
	Token           string
	IsAuthenticated bool
	IsLoading       bool

	// booting is set until the first action after construction.
	booting bool
}

// State is the lifecycle phase derived from the session fields.
type State int

const (
	Bootstrapping State = iota
	Anonymous
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Bootstrapping:
		return "bootstrapping"
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

func (s Session) State() State {
	switch {
	case s.IsAuthenticated:
		return Authenticated
	case s.IsLoading && s.booting:
		return Bootstrapping
	case s.IsLoading:
		return Authenticating
	default:
		return Anonymous
	}
}

type actionKind int

const (
	loginStart actionKind = iota
	loginSuccess
	loginFailure
	logout
	refreshSuccess
	setLoading
	tokenRenewed
)

func (k actionKind) String() string {
	switch k {
	case loginStart:
		return "login_start"
	case loginSuccess:
		return "login_success"
	case loginFailure:
		return "login_failure"
	case logout:
		return "logout"
	case refreshSuccess:
		return "refresh_success"
	case setLoading:
		return "set_loading"
	case tokenRenewed:
		return "token_renewed"
	default:
		return "unknown"
	}
}

type action struct {
	kind    actionKind
	user    *models.User
	token   string
	loading bool
}

func initial(token string) Session {
	return Session{Token: token, IsLoading: true, booting: true}
}

// reduce is the only function that produces a new Session.
func reduce(s Session, a action) Session {
	next := s
	next.booting = false

	switch a.kind {
	case loginStart:
		next.IsLoading = true
	case loginSuccess:
		next.User = a.user
		next.Token = a.token
		next.IsLoading = false
	case loginFailure, logout:
		next = Session{}
	case refreshSuccess:
		next.User = a.user
		next.IsLoading = false
	case setLoading:
		next.IsLoading = a.loading
	case tokenRenewed:
		next.Token = a.token
	}

	next.IsAuthenticated = next.User != nil && next.Token != ""
	return next
}
