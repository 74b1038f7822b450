package middleware

import (
	contextPkg "FaceTracking/pkg/context"
	jwtPkg "FaceTracking/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func unauthorized(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized, stream token invalid or expired",
	})
}

// NewStreamTokenMiddleware accepts the token from the Authorization header or
// the token query parameter. A stream_id query parameter, when present, must
// match the token's claim.
func (m *middleware) NewStreamTokenMiddleware(ctx *fiber.Ctx) error {
	fields := logrus.Fields{
		"path":      ctx.Path(),
		"method":    ctx.Method(),
		"client_ip": ctx.IP(),
	}

	token, err := jwtPkg.TokenFromRequest(ctx)
	if err != nil {
		m.log.WithFields(fields).WithError(err).Warn("Stream token missing")
		return unauthorized(ctx)
	}

	claims, err := jwtPkg.VerifyToken(token)
	if err != nil {
		m.log.WithFields(fields).WithError(err).Warn("Stream token verification failed")
		return unauthorized(ctx)
	}

	if streamID := ctx.Query("stream_id"); streamID != "" && streamID != claims.StreamID {
		m.log.WithFields(fields).WithField("stream_id", streamID).Warn("Stream token issued for another stream")
		return unauthorized(ctx)
	}

	ctx.Locals(jwtPkg.StreamLocals, claims)
	ctx.Locals(contextPkg.StreamIDKey, claims.StreamID)

	m.log.WithFields(fields).WithField("stream_id", claims.StreamID).Debug("Stream token accepted")
	return ctx.Next()
}
