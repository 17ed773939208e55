package game_api_client

const (
	// Base URL
	DefaultBaseURL = "http://localhost:8000"

	// Lobby endpoints
	GameListEndpoint     = "/api/game_list"
	JoinEndpointFmt      = "/game/%d/join"
	GameStateEndpointFmt = "/game/%d/state"

	// Turn endpoints
	DiscardEndpointFmt   = "/game/%d/discard"
	SkipEndpointFmt      = "/game/%d/skip"
	DrawEndpointFmt      = "/game/%d/draw"
	PlayEventEndpointFmt = "/game/%d/event"
	PlaySetEndpointFmt   = "/game/%d/set"
	CounterEndpointFmt   = "/game/%d/nsf"

	// Flow endpoints
	EventActionEndpointFmt      = "/game/%d/event/%s"
	EventRespondEndpointFmt     = "/game/%d/event/%s/respond"
	DetectiveActionEndpointFmt  = "/game/%d/detective-action"
	DetectiveRespondEndpointFmt = "/game/%d/detective-action/respond"

	// Headers
	RequestIDHeader = "X-Request-ID"

	// Skip rules
	SkipRuleAuto = "auto"
)
