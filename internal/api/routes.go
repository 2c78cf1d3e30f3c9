package api

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Health and readiness checks
	s.router.HandleFunc("/health", s.handleHealth)
	s.router.HandleFunc("/ready", s.handleReady)

	// System status
	s.router.HandleFunc("/status", s.handleStatus)

	// Joke listing and named lookups
	s.router.HandleFunc("/jokes", s.handleListJokes)  // GET /jokes?limit=&offset=
	s.router.HandleFunc("/jokes/", s.handleJokeRoutes) // GET /jokes/random, /jokes/:index

	// Dataset reload
	s.router.HandleFunc("/reload", s.handleReload) // POST

	// Metrics
	if s.cfg.Metrics.Enabled {
		endpoint := s.cfg.Metrics.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		s.router.HandleFunc(endpoint, s.handleMetrics)
	}

	// Primary lookup surface: "/" serves a random joke, any other unclaimed
	// path is treated as an index token ("/3", "/abc", ...)
	s.router.HandleFunc("/", s.handleLookup)
}
