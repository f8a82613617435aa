package auth

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts the account lifecycle endpoints. The first block
// is public, the second requires a valid session, and the last one is admin
// only.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	protected := controller.Auther.ProtectedRoute(nil)
	adminOnly := controller.Auther.RequireRole(RoleAdmin)

	app.Post(controller.Routes.Signup, controller.Signup).SetName("auth.signup")
	app.Post(controller.Routes.Login, controller.Login).SetName("auth.login")
	app.Get(controller.Routes.Logout, controller.Logout).SetName("auth.logout")

	app.Post(controller.Routes.ForgotPassword, controller.ForgotPassword).
		SetName("auth.pwd-forgot")
	app.Patch(fmt.Sprintf("%s/:token", controller.Routes.ResetPassword), controller.ResetPassword).
		SetName("auth.pwd-reset")

	app.Patch(controller.Routes.UpdatePassword, protected(controller.UpdatePassword)).
		SetName("auth.pwd-update")
	app.Patch(controller.Routes.UpdateMe, protected(controller.UpdateMe)).
		SetName("me.update")
	app.Delete(controller.Routes.DeleteMe, protected(controller.DeleteMe)).
		SetName("me.delete")

	app.Delete(fmt.Sprintf("%s/:id", controller.Routes.Users), protected(adminOnly(controller.DeleteUser))).
		SetName("users.delete")
}

type AuthControllerRoutes struct {
	Signup         string
	Login          string
	Logout         string
	ForgotPassword string
	ResetPassword  string
	UpdatePassword string
	UpdateMe       string
	DeleteMe       string
	Users          string
}

type AuthController struct {
	Debug             bool
	Logger            Logger
	Repo              RepositoryManager
	Routes            *AuthControllerRoutes
	Auther            HTTPAuthenticator
	Mailer            Mailer
	Activity          ActivitySink
	ContextKey        string
	BaseURL           string
	ResetTokenTTL     time.Duration
	MinPasswordLength int
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:            defLogger{},
		Activity:          noopActivitySink{},
		ContextKey:        "user",
		ResetTokenTTL:     DefaultResetTokenTTL,
		MinPasswordLength: DefaultMinPasswordLength,
		Routes: &AuthControllerRoutes{
			Signup:         "/signup",
			Login:          "/login",
			Logout:         "/logout",
			ForgotPassword: "/forgot-password",
			ResetPassword:  "/reset-password",
			UpdatePassword: "/update-password",
			UpdateMe:       "/update-me",
			DeleteMe:       "/delete-me",
			Users:          "/users",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in auth controller...")
	}

	return c
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther HTTPAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerMailer(mailer Mailer) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Mailer = mailer
		return c
	}
}

func WithControllerActivitySink(sink ActivitySink) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Activity = normalizeActivitySink(sink)
		return c
	}
}

func WithControllerConfig(cfg Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.ContextKey = cfg.GetContextKey()
		c.BaseURL = cfg.GetBaseURL()
		if ttl := cfg.GetResetTokenTTL(); ttl > 0 {
			c.ResetTokenTTL = ttl
		}
		if min := cfg.GetMinPasswordLength(); min > 0 {
			c.MinPasswordLength = min
		}
		return c
	}
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.renderError(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.renderError(ctx, err)
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	token, err := a.Auther.Login(ctx, payload)
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"status": "success",
		"token":  token,
	})
}

func (a *AuthController) Logout(ctx router.Context) error {
	a.Auther.Logout(ctx)
	return ctx.JSON(fiber.StatusOK, map[string]any{
		"status": "success",
	})
}

// SignupPayload is the registration payload
type SignupPayload struct {
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Phone           string `form:"phone" json:"phone"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"password_confirm" json:"password_confirm"`
}

// Validate will validate the payload
func (r SignupPayload) Validate() error {
	return r.ValidateWithPasswordLength(DefaultMinPasswordLength)
}

// ValidateWithPasswordLength validates the payload enforcing the configured
// minimum password length
func (r SignupPayload) ValidateWithPasswordLength(min int) error {
	if min <= 0 {
		min = DefaultMinPasswordLength
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Username, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.Length(10, 11), is.Digit),
		validation.Field(&r.Password, validation.Required, validation.Length(min, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(min, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) Signup(ctx router.Context) error {
	payload := new(SignupPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("signup parse payload: %v", err)
		return a.renderError(ctx, bindError(err))
	}

	if err := payload.ValidateWithPasswordLength(a.MinPasswordLength); err != nil {
		a.Logger.Error("signup validate payload: %v", err)
		return a.renderError(ctx, err)
	}

	var created *User
	req := RegisterUserMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Username:  payload.Username,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Password:  payload.Password,
		OnResponse: func(user *User) {
			created = user
		},
	}

	registerUser := NewRegisterUserHandler(a.Repo).
		WithMailer(a.Mailer).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	if err := registerUser.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("signup execute error: %v", err)
		return a.renderError(ctx, err)
	}

	// a fresh account gets a session right away
	token, err := a.Auther.Login(ctx, LoginRequest{
		Identifier: created.Email,
		Password:   payload.Password,
	})
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, map[string]any{
		"status": "success",
		"token":  token,
		"data": map[string]any{
			"user": created.Sanitized(),
		},
	})
}

// ForgotPasswordPayload holds values for a password reset request
type ForgotPasswordPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
	)
}

// ForgotPassword answers the same way whether or not the address belongs to an
// account, so the endpoint cannot be used to enumerate registered emails.
func (a *AuthController) ForgotPassword(ctx router.Context) error {
	payload := new(ForgotPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("forgot password parse payload: %v", err)
		return a.renderError(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.renderError(ctx, err)
	}

	req := InitializePasswordResetMessage{
		Email:   payload.Email,
		BaseURL: a.BaseURL,
	}

	initPwdReset := NewInitializePasswordResetHandler(a.Repo).
		WithMailer(a.Mailer).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger).
		WithTTL(a.ResetTokenTTL)

	if err := initPwdReset.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("forgot password execute error: %v", err)
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"status":  "success",
		"message": "Token sent to email!",
	})
}

// ResetPasswordPayload holds values for password reset
type ResetPasswordPayload struct {
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"password_confirm" json:"password_confirm"`
}

// Validate will validate the payload
func (r ResetPasswordPayload) Validate() error {
	return r.ValidateWithPasswordLength(DefaultMinPasswordLength)
}

// ValidateWithPasswordLength validates the payload enforcing the configured
// minimum password length
func (r ResetPasswordPayload) ValidateWithPasswordLength(min int) error {
	if min <= 0 {
		min = DefaultMinPasswordLength
	}
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(min, 100),
		),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(min, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) ResetPassword(ctx router.Context) error {
	secret := ctx.Param("token", "")

	payload := new(ResetPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("reset password parse payload: %v", err)
		return a.renderError(ctx, bindError(err))
	}

	if err := payload.ValidateWithPasswordLength(a.MinPasswordLength); err != nil {
		return a.renderError(ctx, err)
	}

	var reset *FinalizePasswordResetResponse
	input := FinalizePasswordResetMessage{
		Secret:   secret,
		Password: payload.Password,
		OnResponse: func(resp *FinalizePasswordResetResponse) {
			reset = resp
		},
	}

	finalizePwdReset := NewFinalizePasswordResetHandler(a.Repo).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	if err := finalizePwdReset.Execute(ctx.Context(), input); err != nil {
		return a.renderError(ctx, err)
	}

	// log the user in with the credential they just set
	token, err := a.Auther.Login(ctx, LoginRequest{
		Identifier: reset.User.Email,
		Password:   payload.Password,
	})
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"status": "success",
		"token":  token,
	})
}

// UpdatePasswordPayload holds values for an authenticated password change
type UpdatePasswordPayload struct {
	PasswordCurrent string `form:"password_current" json:"password_current"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"password_confirm" json:"password_confirm"`
}

// Validate will validate the payload
func (r UpdatePasswordPayload) Validate() error {
	return r.ValidateWithPasswordLength(DefaultMinPasswordLength)
}

// ValidateWithPasswordLength validates the payload enforcing the configured
// minimum password length
func (r UpdatePasswordPayload) ValidateWithPasswordLength(min int) error {
	if min <= 0 {
		min = DefaultMinPasswordLength
	}
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.PasswordCurrent,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(min, 100),
		),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(min, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) UpdatePassword(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.ContextKey)
	if !ok {
		return a.renderError(ctx, ErrUnableToFindSession)
	}

	payload := new(UpdatePasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("update password parse payload: %v", err)
		return a.renderError(ctx, bindError(err))
	}

	if err := payload.ValidateWithPasswordLength(a.MinPasswordLength); err != nil {
		return a.renderError(ctx, err)
	}

	var updated *User
	input := UpdatePasswordMessage{
		UserID:          claims.UserID(),
		CurrentPassword: payload.PasswordCurrent,
		NewPassword:     payload.Password,
		OnResponse: func(user *User) {
			updated = user
		},
	}

	updatePwd := NewUpdatePasswordHandler(a.Repo).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	if err := updatePwd.Execute(ctx.Context(), input); err != nil {
		return a.renderError(ctx, err)
	}

	// the old session just died on the watermark, mint a fresh one
	token, err := a.Auther.Login(ctx, LoginRequest{
		Identifier: updated.Email,
		Password:   payload.Password,
	})
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"status": "success",
		"token":  token,
	})
}

// UpdateMePayload carries profile attributes. Password fields are declared so
// that requests trying to smuggle a credential change through this endpoint
// fail validation instead of being silently dropped.
type UpdateMePayload struct {
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Phone           string `form:"phone" json:"phone"`
	ProfilePicture  string `form:"profile_picture" json:"profile_picture"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"password_confirm" json:"password_confirm"`
}

// Validate will validate the payload
func (r UpdateMePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(1, 200)),
		validation.Field(&r.Username, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.Length(10, 11), is.Digit),
		validation.Field(
			&r.Password,
			validation.Empty.Error("this route is not for password updates, use /update-password"),
		),
		validation.Field(
			&r.ConfirmPassword,
			validation.Empty.Error("this route is not for password updates, use /update-password"),
		),
	)
}

func (a *AuthController) UpdateMe(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.ContextKey)
	if !ok {
		return a.renderError(ctx, ErrUnableToFindSession)
	}

	payload := new(UpdateMePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("update profile parse payload: %v", err)
		return a.renderError(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.renderError(ctx, err)
	}

	var updated *User
	input := UpdateProfileMessage{
		UserID:         claims.UserID(),
		FirstName:      payload.FirstName,
		LastName:       payload.LastName,
		Username:       payload.Username,
		Email:          payload.Email,
		Phone:          payload.Phone,
		ProfilePicture: payload.ProfilePicture,
		OnResponse: func(user *User) {
			updated = user
		},
	}

	updateProfile := NewUpdateProfileHandler(a.Repo).WithLogger(a.Logger)

	if err := updateProfile.Execute(ctx.Context(), input); err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"status": "success",
		"data": map[string]any{
			"user": updated.Sanitized(),
		},
	})
}

// DeleteMe deactivates the caller's own account. The row stays around, only
// is_active flips, so the operation answers 204 and the sessions die on the
// next policy check.
func (a *AuthController) DeleteMe(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.ContextKey)
	if !ok {
		return a.renderError(ctx, ErrUnableToFindSession)
	}

	input := DeactivateAccountMessage{
		UserID: claims.UserID(),
	}

	deactivate := NewDeactivateAccountHandler(a.Repo).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	if err := deactivate.Execute(ctx.Context(), input); err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.NoContent(fiber.StatusNoContent)
}

// DeleteUser permanently removes an account. Admin only.
func (a *AuthController) DeleteUser(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.ContextKey)
	if !ok {
		return a.renderError(ctx, ErrUnableToFindSession)
	}

	input := DeleteAccountMessage{
		UserID: ctx.Param("id", ""),
		Actor: ActorRef{
			ID:   claims.UserID(),
			Type: "admin",
		},
	}

	deleteAccount := NewDeleteAccountHandler(a.Repo).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	if err := deleteAccount.Execute(ctx.Context(), input); err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.NoContent(fiber.StatusNoContent)
}

func (a *AuthController) renderError(ctx router.Context, err error) error {
	var verr validation.Errors
	if errors.As(err, &verr) {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"status": "fail",
			"errors": FormatValidationErrorToMap(verr),
		})
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := HTTPStatusFromError(richErr)
	envelope := "error"
	if status < fiber.StatusInternalServerError {
		envelope = "fail"
	}

	return ctx.JSON(status, map[string]any{
		"status":  envelope,
		"message": richErr.Message,
		"code":    richErr.TextCode,
	})
}

func bindError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
		WithCode(goerrors.CodeBadRequest)
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens ozzo validation errors into a simple
// field to message map for JSON responses.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}

	var verr validation.Errors
	if !errors.As(err, &verr) {
		if err != nil {
			out["error"] = err.Error()
		}
		return out
	}

	for field, ferr := range verr {
		if ferr != nil {
			out[field] = ferr.Error()
		}
	}

	return out
}
