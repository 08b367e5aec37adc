package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	cn "github.com/keybox-dev/keybox-go/constant"
	"github.com/keybox-dev/keybox-go/pkg"
	pkgHTTP "github.com/keybox-dev/keybox-go/pkg/net/http"
)

// Middleware creates a Fiber middleware that starts the guard and rejects
// requests with 403 while the license is not valid
func (g *Guard) Middleware() fiber.Handler {
	g.Start(context.Background())

	return func(ctx *fiber.Ctx) error {
		if g.Valid() {
			return ctx.Next()
		}

		res := g.LastResult()
		g.logger.Warnf("Rejected %s %s: license status %q", ctx.Method(), ctx.Path(), res.Status)

		return pkgHTTP.WithError(ctx, pkg.ValidateBusinessError(cn.ErrLicenseInactive, cn.EntityLicense))
	}
}
