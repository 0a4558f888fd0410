// Package marketsdk is a Go client for the marketplace HTTP API.
//
// Unauthenticated calls (register, login, catalogue reads, health) live on
// Client. Login returns a Session that carries the bearer token for the
// calls that need one:
//
//	c := marketsdk.NewClient("http://localhost:8080")
//	sess, err := c.Login(ctx, "ana@example.com", "secret1")
//	if err != nil {
//		var apiErr *marketsdk.APIError
//		if errors.As(err, &apiErr) && apiErr.Kind == marketsdk.KindInvalidCredentials {
//			// wrong email or password
//		}
//	}
//	me, err := sess.Me(ctx)
//	_ = sess.Logout(ctx)
//
// Every non-2xx response is returned as *APIError carrying the server's
// error kind and any field violations.
package marketsdk
