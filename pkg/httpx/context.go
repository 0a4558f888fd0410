package httpx

import (
	"context"

	"github.com/ponliv/marketplace/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyRole   ctxKey = "role"
	CtxKeyClaims ctxKey = "claims"
	CtxKeyToken  ctxKey = "token"
)

// Principal is the authenticated caller attached by AuthnMiddleware.
type Principal struct {
	UserID string
	Role   string
	Claims jwtx.Claims
	Token  string
}

func contextWithAuth(ctx context.Context, token string, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	ctx = context.WithValue(ctx, CtxKeyToken, token)
	return ctx
}

// PrincipalFromContext returns the caller, or false on unauthenticated routes.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	if !ok {
		return Principal{}, false
	}
	token, _ := ctx.Value(CtxKeyToken).(string)
	return Principal{UserID: c.Subject, Role: c.Role, Claims: c, Token: token}, true
}

// WithPrincipal is the test hook for handlers sitting behind AuthnMiddleware.
func WithPrincipal(ctx context.Context, token string, c jwtx.Claims) context.Context {
	return contextWithAuth(ctx, token, c)
}

func roleFromCtx(ctx context.Context) string {
	role, _ := ctx.Value(CtxKeyRole).(string)
	return role
}
