// Package kamiwaza is a client for the Kamiwaza platform HTTP API.
//
// A Client bundles typed service wrappers (models, serving, catalog, vector
// storage, retrieval, auth) around a shared request executor that owns
// credential lifecycle and failure handling:
//
//   - bearer tokens come from a pluggable Authenticator (static API key, or
//     a username/password session with cached, refreshable tokens persisted
//     through a tokenstore.TokenStore)
//   - a 401 triggers one transparent token refresh and replay of the call
//   - schema writes against datasets this client just mutated retry a
//     transient catalog 404 on a short bounded schedule
//   - failures surface as typed errors (AuthenticationError, APIError,
//     NonAPIResponseError, BackendUnavailableError, TransportError)
//
// # Construction
//
//	client, err := kamiwaza.NewClient("https://host/api",
//		kamiwaza.WithAPIKey(os.Getenv("KAMIWAZA_API_KEY")))
//
// or from the environment:
//
//	cfg, err := kamiwaza.FromEnv(os.Environ)
//	client, err := kamiwaza.NewClientFromConfig(cfg)
//
// A Client is not safe for concurrent use of one password session; give
// each goroutine its own client or serialize calls.
package kamiwaza
