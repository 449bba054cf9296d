package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Pages (guarded navigations)
	RouteHome      = "/"
	RouteLogin     = "/log-in"
	RouteDashboard = "/dashboard"

	// Guarded section prefixes
	PrefixDashboard   = "/dashboard"
	PrefixAstroNova   = "/astro-nova"
	PrefixAstroZenith = "/astro-zenith"

	// Auth API
	RouteAPIAuthCheck      = "/api/auth/check"
	RouteAPIAuthLogin      = "/api/auth/login"
	RouteAPIVerifyOTP      = "/api/auth/verify-otp"
	RouteAPIResendOTP      = "/api/auth/resend-otp"
	RouteAPICreatePassword = "/api/auth/create-password"
	RouteAPILogout         = "/api/logout"
	RouteAPIMe             = "/api/me"

	// Google OAuth
	RouteAuthGoogle = "/auth/google"
	RouteCallback   = "/callback"

	// Relayed business API
	RouteAPIAgents        = "/api/agents"
	RouteAPIOrder         = "/api/order"
	RouteAPIPaymentMethod = "/api/payment-method/{id}"
	RouteAPIAutoClip      = "/api/astro-zenith/auto-clip"
	RouteAPIAutoClipByID  = "/api/astro-zenith/auto-clip/{id}"
	RouteAPIDownload      = "/api/astro-zenith/download"

	// Job progress
	RouteAPIProgress      = "/api/progress/{id}"
	RouteAPIProgressWatch = "/api/progress/{id}/watch"
)

// originWebProxy tags every relayed call so the upstream API can tell
// the web BFF apart from other clients.
const originWebProxy = "web-proxy"
