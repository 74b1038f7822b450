package jwtPkg

import (
	"FaceTracking/internal/entity"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	SecretEnvKey  = "JWT_ACCESS_TOKEN_SECRET"
	StreamIDClaim = "stream_id"
	StreamLocals  = "stream"
)

var (
	ErrEmptyToken    = errors.New("empty token")
	ErrInvalidClaims = errors.New("token has no stream_id claim")
)

func Sign(data map[string]interface{}, expiredAfter time.Duration) (string, time.Time, error) {
	expiredAt := time.Now().Add(expiredAfter)

	secret := os.Getenv(SecretEnvKey)
	if secret == "" {
		return "", time.Time{}, fmt.Errorf("%s not set", SecretEnvKey)
	}

	claims := jwt.MapClaims{}
	claims["exp"] = expiredAt.Unix()

	for k, v := range data {
		claims[k] = v
	}

	logrus.WithField("claims", claims).Debug("Creating token with claims")

	to := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := to.SignedString([]byte(secret))
	if err != nil {
		logrus.WithError(err).Error("Failed to sign token")
		return "", time.Time{}, err
	}

	return token, expiredAt, nil
}

func SignStream(streamID string, ttl time.Duration) (string, time.Time, error) {
	return Sign(map[string]interface{}{StreamIDClaim: streamID}, ttl)
}

// TokenFromRequest prefers the Authorization header and falls back to the
// token query parameter, since browsers cannot set headers on websocket
// upgrades.
func TokenFromRequest(c *fiber.Ctx) (string, error) {
	if header := c.Get("Authorization"); header != "" {
		parts := strings.Split(header, "Bearer ")
		if len(parts) != 2 {
			return "", errors.New("invalid Authorization format")
		}
		token := strings.TrimSpace(parts[1])
		if token == "" {
			return "", ErrEmptyToken
		}
		return token, nil
	}

	if token := c.Query("token"); token != "" {
		return token, nil
	}

	return "", ErrEmptyToken
}

func VerifyToken(accessToken string) (entity.StreamClaims, error) {
	log := logrus.WithField("func", "VerifyToken")

	secret := os.Getenv(SecretEnvKey)
	if secret == "" {
		log.Error("JWT_ACCESS_TOKEN_SECRET environment variable not set")
		return entity.StreamClaims{}, errors.New("JWT secret not configured")
	}

	token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.WithField("method", token.Header["alg"]).Error("Unexpected signing method")
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		log.WithError(err).Debug("Failed to parse JWT token")
		return entity.StreamClaims{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return entity.StreamClaims{}, ErrInvalidClaims
	}

	streamID, ok := claims[StreamIDClaim].(string)
	if !ok || streamID == "" {
		return entity.StreamClaims{}, ErrInvalidClaims
	}

	return entity.StreamClaims{StreamID: streamID}, nil
}

func GetStreamClaims(c *fiber.Ctx) (entity.StreamClaims, error) {
	claims, ok := c.Locals(StreamLocals).(entity.StreamClaims)
	if !ok {
		return entity.StreamClaims{}, fiber.ErrUnauthorized
	}

	return claims, nil
}
