/*
Package dihttp provides HTTP middleware for creating [di.Container] scopes for each request.

The middleware has the standard func(http.Handler) http.Handler signature, so it can be
mounted on [http.ServeMux] handlers or on routers such as chi.

Example:

	c, err := di.NewContainer(
		di.WithService(NewService),
		di.WithService(NewRequestService, di.Scoped),
	)

	scopeMiddleware, err := dihttp.NewRequestScopeMiddleware(c)

	r := chi.NewRouter()
	r.Use(scopeMiddleware)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		svc := dicontext.MustResolve[*RequestService](r.Context())
		svc.HandleRequest(w, r)
	})
*/
package dihttp
