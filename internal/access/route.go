package access

import (
	"path"
	"strings"
)

// Area is the static classification of a request path.
type Area int

const (
	AreaPublic Area = iota
	AreaAdminAuth
	AreaAdminProtected
	AreaSuperadminAuth
	AreaSuperadminProtected
)

func (a Area) String() string {
	switch a {
	case AreaAdminAuth:
		return "admin_auth"
	case AreaAdminProtected:
		return "admin_protected"
	case AreaSuperadminAuth:
		return "superadmin_auth"
	case AreaSuperadminProtected:
		return "superadmin_protected"
	default:
		return "public"
	}
}

// Redirect targets.
const (
	HomePath                = "/"
	AdminLoginPath          = "/admin/login"
	AdminRegisterPath       = "/admin/register"
	AdminDashboardPath      = "/admin/dashboard"
	AdminSuspendedPath      = "/admin/login?error=account_suspended"
	SuperadminLoginPath     = "/superadmin/login"
	SuperadminDashboardPath = "/superadmin/dashboard"
	SuperadminSuspendedPath = "/superadmin/login?error=account_suspended"
)

// ErrorAccountSuspended is the error query value carried by revocation redirects.
const ErrorAccountSuspended = "account_suspended"

var (
	adminAuthPrefixes      = []string{AdminLoginPath, AdminRegisterPath}
	superadminAuthPrefixes = []string{SuperadminLoginPath}
)

// Classify maps a request path to exactly one Area. Auth pages match by
// prefix; the protected areas match the /admin and /superadmin segments.
func Classify(p string) Area {
	for _, prefix := range adminAuthPrefixes {
		if strings.HasPrefix(p, prefix) {
			return AreaAdminAuth
		}
	}
	for _, prefix := range superadminAuthPrefixes {
		if strings.HasPrefix(p, prefix) {
			return AreaSuperadminAuth
		}
	}
	if underSegment(p, "/admin") {
		return AreaAdminProtected
	}
	if underSegment(p, "/superadmin") {
		return AreaSuperadminProtected
	}
	return AreaPublic
}

func underSegment(p, segment string) bool {
	return p == segment || strings.HasPrefix(p, segment+"/")
}

var staticExtensions = map[string]bool{
	".svg":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".ico":  true,
}

// ShouldEvaluate reports whether the decision procedure runs for p.
// Static assets and images bypass it.
func ShouldEvaluate(p string) bool {
	if strings.HasPrefix(p, "/static/") || p == "/favicon.ico" {
		return false
	}
	return !staticExtensions[strings.ToLower(path.Ext(p))]
}
