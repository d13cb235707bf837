package guard

import (
	"net/url"
	"strings"

	"github.com/bookhaven/storefront/core/session"
)

// Kind selects which rule set a route is protected by.
type Kind int

const (
	// RequireAuth allows any authenticated actor.
	RequireAuth Kind = iota
	// RequireUser allows authenticated non-admin actors. Admins are sent to their own area.
	RequireUser
	// RequireAdmin allows authenticated admins only.
	RequireAdmin
	// GuestOnly protects login, signup and password reset pages from authenticated actors.
	GuestOnly
)

func (k Kind) String() string {
	switch k {
	case RequireAuth:
		return "require_auth"
	case RequireUser:
		return "require_user"
	case RequireAdmin:
		return "require_admin"
	case GuestOnly:
		return "guest_only"
	default:
		return "unknown"
	}
}

// Outcome is the terminal state of one navigation attempt.
type Outcome int

const (
	// Loading means the session is not resolved yet; render a placeholder and decide later.
	Loading Outcome = iota
	// Allow renders the requested view.
	Allow
	// Redirect navigates to Decision.Target and renders nothing.
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// NoticeUnauthorized is shown when an authenticated non-admin reaches an admin route.
const NoticeUnauthorized = "unauthorized"

// Decision is the result of evaluating a guard.
type Decision struct {
	Outcome Outcome
	Target  string
	// Purge asks the caller to drop the cached identity and credential.
	Purge bool
	// Notice is a user-facing message to emit alongside the redirect.
	Notice string
}

// Routes are the navigation targets used by the guards.
type Routes struct {
	Login       string `env:"GUARD_LOGIN_PATH" envDefault:"/login"`
	AdminLogin  string `env:"GUARD_ADMIN_LOGIN_PATH" envDefault:"/admin/login"`
	UserHome    string `env:"GUARD_USER_HOME" envDefault:"/dashboard"`
	AdminHome   string `env:"GUARD_ADMIN_HOME" envDefault:"/admin"`
	UserArea    string `env:"GUARD_USER_AREA" envDefault:"/dashboard"`
	AdminArea   string `env:"GUARD_ADMIN_AREA" envDefault:"/admin"`
	ReturnParam string `env:"GUARD_RETURN_PARAM" envDefault:"redirect"`
}

// DefaultRoutes returns the storefront's standard navigation targets.
func DefaultRoutes() Routes {
	return Routes{
		Login:       "/login",
		AdminLogin:  "/admin/login",
		UserHome:    "/dashboard",
		AdminHome:   "/admin",
		UserArea:    "/dashboard",
		AdminArea:   "/admin",
		ReturnParam: "redirect",
	}
}

// Evaluate decides a navigation to path using DefaultRoutes.
func Evaluate(state session.State, kind Kind, path string) Decision {
	return DefaultRoutes().Evaluate(state, kind, path)
}

// Evaluate decides whether the actor described by state may navigate to path.
// Rules are checked in order and the first match wins.
func (r Routes) Evaluate(state session.State, kind Kind, path string) Decision {
	if !state.IsInitialized {
		return Decision{Outcome: Loading}
	}

	authenticated := state.Authenticated && state.User != nil
	admin := authenticated && state.User.IsAdmin()

	switch kind {
	case RequireAuth, RequireUser:
		if !authenticated {
			return redirect(r.loginWithReturn(path))
		}
		if kind == RequireUser && admin {
			return redirect(r.AdminHome)
		}
	case RequireAdmin:
		if !authenticated {
			return redirect(r.AdminLogin)
		}
		if !admin {
			return Decision{Outcome: Redirect, Target: r.Login, Purge: true, Notice: NoticeUnauthorized}
		}
	case GuestOnly:
		if !authenticated {
			break
		}
		home, area := r.UserHome, r.UserArea
		if admin {
			home, area = r.AdminHome, r.AdminArea
		}
		// Login pages send an authenticated actor home even inside its own area.
		login := samePath(path, r.Login) || samePath(path, r.AdminLogin)
		if (login || !within(path, area)) && !samePath(path, home) {
			return redirect(home)
		}
	}

	return Decision{Outcome: Allow}
}

func (r Routes) loginWithReturn(path string) string {
	if path == "" || r.ReturnParam == "" {
		return r.Login
	}
	sep := "?"
	if strings.Contains(r.Login, "?") {
		sep = "&"
	}
	return r.Login + sep + url.Values{r.ReturnParam: {path}}.Encode()
}

func redirect(target string) Decision {
	return Decision{Outcome: Redirect, Target: target}
}

// within reports whether path is area itself or below it.
func within(path, area string) bool {
	if area == "" {
		return false
	}
	path = stripQuery(path)
	area = strings.TrimSuffix(area, "/")
	return path == area || strings.HasPrefix(path, area+"/")
}

func samePath(path, target string) bool {
	if target == "" {
		return false
	}
	return strings.TrimSuffix(stripQuery(path), "/") == strings.TrimSuffix(stripQuery(target), "/")
}

func stripQuery(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		return path[:i]
	}
	return path
}
