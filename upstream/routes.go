package upstream

// Route path constants for the upstream API.
// All relayed paths are defined here to ensure consistency and prevent typos
const (
	// Auth
	RouteGenerateToken = "/auth/generate-token"
	RouteRefreshToken  = "/auth/refresh-token"
	RouteLogout        = "/auth/logout"
	RouteCheckAccount  = "/auth/check-account"

	// Onboarding
	RouteCreatePassword = "/users/create-password"
	RouteVerifyOTP      = "/users/verify-verification"
	RouteResendOTP      = "/users/resend-verification"

	// Business
	RouteAgents        = "/agents"
	RouteOrder         = "/payment/order"
	RoutePaymentMethod = "/payment/payment-method"
	RouteAutoClip      = "/astro-zenith/auto-clip"
	RouteDownload      = "/astro-zenith/download"
)
