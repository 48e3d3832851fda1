package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/goliatone/go-person-auth/middleware/jwtware"
)

// UsersPrefix is the legacy mount point every route is also served under.
const UsersPrefix = "/users"

// AppOptions configure NewApp.
type AppOptions struct {
	BodyLimit int
	Logger    Logger
	Metrics   *Metrics
}

// NewApp builds the fiber application serving ctrl at the root and
// under UsersPrefix.
func NewApp(ctrl *AuthController, opts AppOptions) *fiber.App {
	logger := normalizeLogger(opts.Logger)

	app := fiber.New(fiber.Config{
		AppName:               "person-auth",
		BodyLimit:             opts.BodyLimit,
		ErrorHandler:          FiberErrorHandler(logger),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())

	if opts.Metrics != nil {
		app.Use(opts.Metrics.Middleware())
		app.Get("/metrics", opts.Metrics.Handler())
	}

	ctrl.RegisterRoutes(app)
	ctrl.RegisterRoutes(app.Group(UsersPrefix))

	return app
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// NewErrorResponse builds the client facing body for err. Source errors
// and metadata are never included.
func NewErrorResponse(err error) (int, ErrorResponse) {
	status := StatusFor(err)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, ErrorResponse{Error: fe.Message, Code: textCodeForStatus(fe.Code)}
	}

	e, ok := AsError(err)
	if !ok || e.Category == CategoryInternal {
		return http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  "INTERNAL_ERROR",
		}
	}

	code := e.TextCode
	if code == "" {
		code = textCodeForStatus(status)
	}

	return status, ErrorResponse{
		Error:   e.Message,
		Code:    code,
		Details: e.Details,
	}
}

// WriteError renders err as JSON. 5xx errors are logged with their
// source, which is not sent to the client.
func WriteError(c *fiber.Ctx, logger Logger, err error) error {
	status, body := NewErrorResponse(err)
	if status >= http.StatusInternalServerError {
		normalizeLogger(logger).Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"error", err,
		)
	}
	return c.Status(status).JSON(body)
}

// FiberErrorHandler is installed as the fiber app error handler so
// errors returned from handlers and fiber itself share one shape.
func FiberErrorHandler(logger Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return WriteError(c, logger, err)
	}
}

// jwtErrorHandler maps middleware failures onto the error taxonomy:
// no token is a missing credential, anything else an invalid token.
func jwtErrorHandler(logger Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
			return WriteError(c, logger, ErrMissingToken)
		}
		if _, ok := AsError(err); !ok {
			err = ErrTokenMalformed.WithSource(err)
		}
		return WriteError(c, logger, err)
	}
}

func textCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	default:
		if status >= http.StatusInternalServerError {
			return "INTERNAL_ERROR"
		}
		return "ERROR"
	}
}
