package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-users/middleware/authware"
)

// ContextKeyAuthUser is the Locals key under which ProtectedRoute stores the
// user record resolved by the session policy. GetRouterUser reads it back.
const ContextKeyAuthUser = "auth_user"

// LogoutCookieValue is the filler written over the session cookie on logout.
// It is not a valid token, any client still presenting it fails verification.
const LogoutCookieValue = "loggedout"

// LogoutCookieTTL is how long the filler cookie sticks around before the
// browser drops it.
const LogoutCookieTTL = 5 * time.Second

type RouteAuthenticator struct {
	auth             Authenticator
	cfg              Config
	validator        TokenService
	cookieDuration   time.Duration
	Logger           Logger
	AuthErrorHandler func(c router.Context, err error) error
	ErrorHandler     func(c router.Context, err error) error
}

var _ HTTPAuthenticator = (*RouteAuthenticator)(nil)

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	cookieDuration := 24 * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	a := &RouteAuthenticator{
		cfg:            cfg,
		auth:           auther,
		Logger:         defLogger{},
		cookieDuration: cookieDuration,
		validator: NewTokenService(
			[]byte(cfg.GetSigningKey()),
			cfg.GetTokenExpiration(),
			cfg.GetIssuer(),
			cfg.GetAudience(),
			defLogger{},
		),
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// ProtectedRoute authenticates the request. Missing, invalid, and revoked
// tokens all reach the error handler, which should answer 401.
func (a *RouteAuthenticator) ProtectedRoute(errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = a.MakeClientRouteAuthErrorHandler(false)
	}

	return authware.New(authware.Config{
		ErrorHandler:   errorHandler,
		AuthScheme:     a.cfg.GetAuthScheme(),
		ContextKey:     a.cfg.GetContextKey(),
		UserKey:        ContextKeyAuthUser,
		TokenLookup:    a.cfg.GetTokenLookup(),
		TokenValidator: claimsValidator{svc: a.validator},
		SessionGuard:   a.sessionGuard(),
		ContextEnricher: func(ctx context.Context, claims authware.AuthClaims, principal any) context.Context {
			if ac, ok := claims.(AuthClaims); ok {
				ctx = WithClaimsContext(ctx, ac)
			}
			if user, ok := principal.(*User); ok {
				ctx = WithContext(ctx, user)
			}
			return ctx
		},
	})
}

// RequireRole authorizes an already authenticated request: the session role
// must be one of the given roles. Runs after ProtectedRoute, a missing claim
// means the request never went through authentication and is rejected.
func (a *RouteAuthenticator) RequireRole(roles ...string) router.MiddlewareFunc {
	contextKey := a.cfg.GetContextKey()
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			claims, ok := GetRouterClaims(ctx, contextKey)
			if !ok {
				return a.ErrorHandler(ctx, ErrUnableToFindSession)
			}

			if !RoleIn(claims.Role(), roles...) {
				a.Logger.Warn("Authorization rejected: role %q not in %v", claims.Role(), roles)
				return a.ErrorHandler(ctx, ErrInsufficientRole)
			}

			return hf(ctx)
		}
	}
}

func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) (string, error) {
	token, err := a.auth.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return "", err
	}

	a.setCookieToken(ctx, token, a.cookieDuration)
	return token, nil
}

// Logout overwrites the session cookie with a short lived filler value. The
// real revocation is stateless: the account's password change watermark and
// the token expiry decide whether a stolen copy keeps working.
func (a *RouteAuthenticator) Logout(ctx router.Context) {
	ctx.Cookie(&router.Cookie{
		Name:     a.cfg.GetContextKey(),
		Value:    LogoutCookieValue,
		Expires:  time.Now().Add(LogoutCookieTTL),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) MakeClientRouteAuthErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		var richErr *errors.Error
		if !errors.As(err, &richErr) {
			richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
				WithTextCode(TextCodeInvalidToken).
				WithCode(errors.CodeUnauthorized)
		}

		if optional {
			a.Logger.Info("Optional auth failed, proceeding: %s", richErr.Message)
			return ctx.Next()
		}

		return a.ErrorHandler(ctx, richErr)
	}
}

func (a *RouteAuthenticator) sessionGuard() authware.SessionGuard {
	return func(ctx context.Context, claims authware.AuthClaims) (any, error) {
		issuedAt := claims.IssuedAt()
		session := &SessionObject{
			UserID:   claims.UserID(),
			UserRole: claims.Role(),
			IssuedAt: &issuedAt,
		}

		identity, err := a.auth.IdentityFromSession(ctx, session)
		if err != nil {
			return nil, err
		}

		if resolver, ok := identity.(interface{ SessionUser() *User }); ok {
			if user := resolver.SessionUser(); user != nil {
				return user, nil
			}
		}

		return nil, nil
	}
}

func (a *RouteAuthenticator) setCookieToken(c router.Context, val string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     a.cfg.GetContextKey(),
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected authentication error").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info("Authentication error %s [%s] path=%s", richErr.Message, richErr.TextCode, c.OriginalURL())

	return c.JSON(HTTPStatusFromError(richErr), map[string]any{
		"status":  "fail",
		"message": richErr.Message,
		"code":    richErr.TextCode,
	})
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz, errors.CategoryRateLimit:
		return a.AuthErrorHandler(c, richErr)
	default:
		return c.JSON(HTTPStatusFromError(richErr), map[string]any{
			"status":  "error",
			"message": richErr.Message,
			"code":    richErr.TextCode,
		})
	}
}

// claimsValidator bridges the token service into the middleware package.
type claimsValidator struct {
	svc TokenService
}

func (v claimsValidator) Validate(raw string) (authware.AuthClaims, error) {
	claims, err := v.svc.Validate(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
