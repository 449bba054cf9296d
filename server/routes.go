package server

func (s *Server) registerRoutes() {
	page := s.PageHandler()

	// Guarded page navigations. "GET /{$}" keeps the landing page off
	// the catch-all so the guard's entry rules stay exact-match.
	s.RegisterRouteFunc("GET /{$}", ChainMiddleware(page, s.GuardMiddleware))
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(page, s.GuardMiddleware))
	s.RegisterRouteFunc("GET "+RouteLogin+"/", ChainMiddleware(page, s.GuardMiddleware))
	s.RegisterRouteFunc("GET "+PrefixDashboard, ChainMiddleware(page, s.GuardMiddleware))
	s.RegisterRouteFunc("GET "+PrefixDashboard+"/", ChainMiddleware(page, s.GuardMiddleware))
	s.RegisterRouteFunc("GET "+PrefixAstroNova, ChainMiddleware(page, s.GuardMiddleware))
	s.RegisterRouteFunc("GET "+PrefixAstroNova+"/", ChainMiddleware(page, s.GuardMiddleware))
	s.RegisterRouteFunc("GET "+PrefixAstroZenith, ChainMiddleware(page, s.GuardMiddleware))
	s.RegisterRouteFunc("GET "+PrefixAstroZenith+"/", ChainMiddleware(page, s.GuardMiddleware))

	// Auth wizard
	s.RegisterRouteFunc("POST "+RouteAPIAuthCheck, s.CheckHandler())
	s.RegisterRouteFunc("POST "+RouteAPIAuthLogin, s.LoginHandler())
	s.RegisterRouteFunc("POST "+RouteAPIVerifyOTP, s.VerifyOTPHandler())
	s.RegisterRouteFunc("POST "+RouteAPIResendOTP, s.ResendOTPHandler())
	s.RegisterRouteFunc("POST "+RouteAPICreatePassword, s.CreatePasswordHandler())
	s.RegisterRouteFunc("POST "+RouteAPILogout, s.LogoutHandler())
	s.RegisterRouteFunc("GET "+RouteAPIMe, s.MeHandler())

	// Google OAuth
	s.RegisterRouteFunc("GET "+RouteAuthGoogle, s.GoogleRedirectHandler())
	s.RegisterRouteFunc("GET "+RouteCallback, s.GoogleCallbackHandler())

	// Relayed business API
	s.RegisterRouteFunc("GET "+RouteAPIAgents, s.AgentsHandler())
	s.RegisterRouteFunc("POST "+RouteAPIOrder, s.OrderHandler())
	s.RegisterRouteFunc("GET "+RouteAPIPaymentMethod, s.PaymentMethodHandler())
	s.RegisterRouteFunc("GET "+RouteAPIAutoClip, s.AutoClipListHandler())
	s.RegisterRouteFunc("POST "+RouteAPIAutoClip, s.AutoClipSubmitHandler())
	s.RegisterRouteFunc("GET "+RouteAPIAutoClipByID, s.AutoClipDetailHandler())
	s.RegisterRouteFunc("GET "+RouteAPIDownload, s.DownloadHandler())

	// Job progress
	s.RegisterRouteFunc("GET "+RouteAPIProgress, s.ProgressSnapshotHandler())
	s.RegisterRouteFunc("POST "+RouteAPIProgressWatch, s.ProgressWatchHandler())
}
