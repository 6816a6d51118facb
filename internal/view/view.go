package view

// Kind is the outcome class of the guard.
type Kind int

const (
	Landing Kind = iota
	ScaleLanding
	Login
	Loading
	Protected
)

func (k Kind) String() string {
	switch k {
	case Landing:
		return "landing"
	case ScaleLanding:
		return "scale"
	case Login:
		return "login"
	case Loading:
		return "loading"
	case Protected:
		return "protected"
	default:
		return "unknown"
	}
}

// Protected view names.
const (
	Dashboard  = "dashboard"
	Facilities = "facilities"
	Stock      = "stock"
	Alerts     = "alerts"
)

// View is what the shell renders. Name is set only for Protected views.
type View struct {
	Kind Kind
	Name string
}

func (v View) String() string {
	if v.Kind == Protected {
		return v.Name
	}
	return v.Kind.String()
}

var protectedRoutes = map[string]string{
	"/":           Dashboard,
	"/dashboard":  Dashboard,
	"/facilities": Facilities,
	"/stock":      Stock,
	"/alerts":     Alerts,
}

// Select maps the current path and session flags to a view. Rules are evaluated in order
// and the first match wins; an authenticated user on "/" gets the dashboard.
func Select(path string, isAuthenticated, isLoading bool) View {
	switch {
	case path == "/" && !isAuthenticated && !isLoading:
		return View{Kind: Landing}
	case path == "/scale":
		return View{Kind: ScaleLanding}
	case path == "/login":
		return View{Kind: Login}
	case isLoading:
		return View{Kind: Loading}
	case !isAuthenticated:
		return View{Kind: Login}
	}

	if name, ok := protectedRoutes[path]; ok {
		return View{Kind: Protected, Name: name}
	}
	return View{Kind: Protected, Name: Dashboard}
}

// Routes lists the recognized paths.
func Routes() []string {
	return []string{"/", "/scale", "/login", "/dashboard", "/facilities", "/stock", "/alerts"}
}
