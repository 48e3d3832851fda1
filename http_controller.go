package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-person-auth/middleware/jwtware"
)

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks both credentials are present.
func (r LoginRequest) Validate() error {
	return validationFailure(validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	))
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

// TokenResponse is returned by GET /generate-token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresIn string    `json:"expires_in"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthCodeResponse is returned by GET /auth-code/:userId.
type AuthCodeResponse struct {
	UserID    int64     `json:"user_id"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthControllerRoutes holds the paths the controller mounts.
type AuthControllerRoutes struct {
	Login         string
	Register      string
	GenerateToken string
	Person        string
	AuthCode      string
	Health        string
}

var defaultRoutes = AuthControllerRoutes{
	Login:         "/login",
	Register:      "/register",
	GenerateToken: "/generate-token",
	Person:        "/person",
	AuthCode:      "/auth-code",
	Health:        "/health",
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// AuthController serves the JSON API.
type AuthController struct {
	Debug      bool
	Logger     Logger
	Auther     Authenticator
	Registrar  *RegisterUserHandler
	Persons    *PersonService
	AuthCodes  *AuthCodeIssuer
	Validator  TokenValidator
	Metrics    *Metrics
	Health     HealthCheck
	Routes     *AuthControllerRoutes
	ContextKey string
	AuthScheme string
}

// AuthControllerOption configures an AuthController.
type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	routes := defaultRoutes
	c := &AuthController{
		Logger:     defaultLogger(),
		Routes:     &routes,
		ContextKey: DefaultContextKey,
		AuthScheme: DefaultAuthScheme,
	}

	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	if c.Validator == nil && c.Auther != nil {
		c.Validator = c.Auther.TokenService()
	}

	return c
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Logger = normalizeLogger(logger)
		return ac
	}
}

func WithAuthenticator(a Authenticator) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Auther = a
		return ac
	}
}

func WithRegistrar(h *RegisterUserHandler) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Registrar = h
		return ac
	}
}

func WithPersonService(s *PersonService) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Persons = s
		return ac
	}
}

func WithAuthCodeIssuer(i *AuthCodeIssuer) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.AuthCodes = i
		return ac
	}
}

func WithTokenValidator(v TokenValidator) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Validator = v
		return ac
	}
}

func WithMetrics(m *Metrics) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Metrics = m
		return ac
	}
}

func WithHealthCheck(h HealthCheck) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Health = h
		return ac
	}
}

// WithControllerConfig takes the auth scheme and context key from cfg.
func WithControllerConfig(cfg Config) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		if s := cfg.GetAuthScheme(); s != "" {
			ac.AuthScheme = s
		}
		if k := cfg.GetContextKey(); k != "" {
			ac.ContextKey = k
		}
		return ac
	}
}

// ProtectedRoute returns the JWT middleware guarding bearer routes.
func (a *AuthController) ProtectedRoute() fiber.Handler {
	cfg := jwtware.Config{
		ContextKey:   a.ContextKey,
		AuthScheme:   a.AuthScheme,
		TokenLookup:  "header:Authorization",
		ErrorHandler: jwtErrorHandler(a.Logger),
		Validate: func(raw string) (any, error) {
			return a.Validator.Validate(raw)
		},
		ContextEnricher: ContextEnricherAdapter,
	}
	RegisterValidationListeners(&cfg, RequireKnownPrincipal)
	return jwtware.New(cfg)
}

// RegisterRoutes mounts every endpoint on r.
func (a *AuthController) RegisterRoutes(r fiber.Router) {
	routes := a.Routes
	protected := a.ProtectedRoute()

	r.Post(routes.Login, a.LoginPost)
	r.Post(routes.Register, a.RegisterPost)
	r.Get(routes.GenerateToken, a.GenerateToken)
	r.Get(routes.Health, a.HealthGet)

	r.Get(routes.Person, protected, a.ListPersons)
	r.Post(routes.Person, protected, a.CreatePerson)
	r.Get(routes.Person+"/:id", protected, a.GetPerson)
	r.Put(routes.Person+"/:id", protected, a.UpdatePerson)
	r.Delete(routes.Person+"/:id", protected, a.DeletePerson)

	r.Get(routes.AuthCode+"/:userId", protected, a.IssueAuthCode)
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return a.fail(c, ValidationError("invalid request body", map[string]any{"body": err.Error()}))
	}

	if err := req.Validate(); err != nil {
		return a.fail(c, err)
	}

	res, err := a.Auther.Login(c.UserContext(), req.Username, req.Password)
	a.Metrics.observeLogin(err)
	if err != nil {
		return a.fail(c, err)
	}

	return c.JSON(LoginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      userResponse(res.Identity),
	})
}

func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	var msg RegisterUserMessage
	if err := c.BodyParser(&msg); err != nil {
		return a.fail(c, ValidationError("invalid request body", map[string]any{"body": err.Error()}))
	}

	var created *User
	msg.OnResponse = func(resp *RegisterUserResponse) {
		created = resp.User
	}

	if err := a.Registrar.Execute(c.UserContext(), msg); err != nil {
		return a.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      created.ID,
		"message": "user registered",
	})
}

func (a *AuthController) GenerateToken(c *fiber.Ctx) error {
	res, err := a.Auther.GenerateToken(
		c.UserContext(),
		c.Query("id"),
		c.Query("vorname"),
		c.Query("password"),
	)
	a.Metrics.observeToken(err)
	if err != nil {
		return a.fail(c, err)
	}

	return c.JSON(TokenResponse{
		Token:     res.Token,
		ExpiresIn: res.ExpiresAt.Sub(res.IssuedAt).String(),
		ExpiresAt: res.ExpiresAt,
	})
}

func (a *AuthController) ListPersons(c *fiber.Ctx) error {
	records, err := a.Persons.List(c.UserContext())
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(records)
}

func (a *AuthController) GetPerson(c *fiber.Ctx) error {
	record, err := a.Persons.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(record)
}

func (a *AuthController) CreatePerson(c *fiber.Ctx) error {
	in, err := DecodePersonInput(c.Body())
	if err != nil {
		return a.fail(c, err)
	}

	record, err := a.Persons.Create(c.UserContext(), a.claims(c), in)
	if err != nil {
		return a.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

func (a *AuthController) UpdatePerson(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := ParseID(id); err != nil {
		return a.fail(c, err)
	}

	patch, err := DecodePersonPatch(c.Body())
	if err != nil {
		return a.fail(c, err)
	}

	record, err := a.Persons.Update(c.UserContext(), a.claims(c), id, patch)
	if err != nil {
		return a.fail(c, err)
	}

	return c.JSON(record)
}

func (a *AuthController) DeletePerson(c *fiber.Ctx) error {
	id, err := a.Persons.Delete(c.UserContext(), a.claims(c), c.Params("id"))
	if err != nil {
		return a.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "person deleted",
		"id":      id,
	})
}

func (a *AuthController) IssueAuthCode(c *fiber.Ctx) error {
	code, err := a.AuthCodes.IssueFor(c.UserContext(), a.claims(c), c.Params("userId"))
	if err != nil {
		return a.fail(c, err)
	}
	a.Metrics.observeCode()

	return c.JSON(AuthCodeResponse{
		UserID:    code.UserID,
		Code:      code.Code,
		ExpiresAt: code.ExpiresAt,
	})
}

func (a *AuthController) HealthGet(c *fiber.Ctx) error {
	if a.Health != nil {
		if err := a.Health(c.UserContext()); err != nil {
			a.Logger.Error("health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (a *AuthController) claims(c *fiber.Ctx) AuthClaims {
	claims, _ := GetFiberClaims(c, a.ContextKey)
	return claims
}

func (a *AuthController) fail(c *fiber.Ctx, err error) error {
	if a.Debug {
		a.Logger.Debug("request error", "path", c.Path(), "error", err)
	}
	return WriteError(c, a.Logger, err)
}

func userResponse(identity Identity) *UserResponse {
	if identity == nil {
		return nil
	}

	out := &UserResponse{
		ID:       identity.ID(),
		Username: identity.Username(),
		Email:    identity.Email(),
		Role:     identity.Role(),
		IsActive: true,
	}

	if holder, ok := identity.(interface{ User() *User }); ok && holder.User() != nil {
		u := holder.User()
		out.IsActive = u.IsActive
		out.LastLogin = u.LastLogin
	}

	return out
}
