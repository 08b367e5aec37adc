// Package server exposes the license service over HTTP with fiber.
package server

import (
	"context"
	"errors"

	"github.com/LerianStudio/lib-commons/commons/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/keybox-dev/keybox-go/constant"
	"github.com/keybox-dev/keybox-go/internal/metrics"
	"github.com/keybox-dev/keybox-go/model"
	"github.com/keybox-dev/keybox-go/pkg"
	pkgHTTP "github.com/keybox-dev/keybox-go/pkg/net/http"
)

// LicenseService is what the HTTP layer needs from the service.
type LicenseService interface {
	Validate(ctx context.Context, req model.ValidationRequest) (model.ValidationResult, error)
	Activate(ctx context.Context, req model.KeyRequest) (model.ActivationResult, error)
	Revoke(ctx context.Context, req model.KeyRequest) (model.RevocationResult, error)
	Create(ctx context.Context, in model.CreateLicenseInput) (model.CreationResult, error)
	List(ctx context.Context) ([]*model.License, error)
}

type Server struct {
	app     *fiber.App
	service LicenseService
	logger  log.Logger
}

// New builds the fiber app and registers every route. m may be nil, in which
// case /metrics is not served.
func New(svc LicenseService, m *metrics.Metrics, logger log.Logger) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
		}),
		service: svc,
		logger:  logger,
	}

	s.app.Use(recover.New())

	s.app.Get("/health", s.health)

	if m != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	v := s.app.Group("/validate")
	v.Post("/", s.validate)
	v.Post("/activate", s.activate)

	l := s.app.Group("/license")
	l.Get("/", s.list)
	l.Post("/create", s.create)
	l.Patch("/revoke", s.revoke)
	l.Patch("/revoke/:key", s.revoke)

	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Infof("Listening on %s", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// validate always answers with a body the SDK can decode as a ValidationResult.
func (s *Server) validate(c *fiber.Ctx) error {
	var req model.ValidationRequest
	if err := c.BodyParser(&req); err != nil {
		return pkgHTTP.ValidationFailure(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	res, err := s.service.Validate(c.UserContext(), req)
	if err != nil {
		var verr pkg.ValidationError
		if errors.As(err, &verr) {
			return pkgHTTP.ValidationFailure(c, fiber.StatusBadRequest, verr.Message, nil)
		}

		return pkgHTTP.ValidationFailure(c, fiber.StatusInternalServerError, constant.MessageValidationFail, errors.Unwrap(err))
	}

	return c.JSON(res)
}

func (s *Server) activate(c *fiber.Ctx) error {
	var req model.KeyRequest
	if err := c.BodyParser(&req); err != nil {
		return pkgHTTP.WithError(c, pkg.ValidateBusinessError(constant.ErrInvalidRequestBody, constant.EntityLicense))
	}

	res, err := s.service.Activate(c.UserContext(), req)
	if err != nil {
		return pkgHTTP.WithError(c, err)
	}

	return c.JSON(res)
}

func (s *Server) revoke(c *fiber.Ctx) error {
	req := model.KeyRequest{Key: c.Params("key")}

	if req.Key == "" && len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return pkgHTTP.WithError(c, pkg.ValidateBusinessError(constant.ErrInvalidRequestBody, constant.EntityLicense))
		}
	}

	if req.Key == "" {
		req.Key = c.Query("key")
	}

	res, err := s.service.Revoke(c.UserContext(), req)
	if err != nil {
		return pkgHTTP.WithError(c, err)
	}

	return c.JSON(res)
}

func (s *Server) create(c *fiber.Ctx) error {
	var in model.CreateLicenseInput
	if err := c.BodyParser(&in); err != nil {
		return pkgHTTP.WithError(c, pkg.ValidateBusinessError(constant.ErrInvalidRequestBody, constant.EntityLicense))
	}

	res, err := s.service.Create(c.UserContext(), in)
	if err != nil {
		return pkgHTTP.WithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(res)
}

func (s *Server) list(c *fiber.Ctx) error {
	licenses, err := s.service.List(c.UserContext())
	if err != nil {
		return pkgHTTP.WithError(c, err)
	}

	return c.JSON(licenses)
}
