package errx

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// WrapRedis maps Redis errors to AppError with appropriate status codes.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, redis.Nil) {
		return New(err, StatusNotFound, RedisNotFoundMessage)
	}

	return New(err, StatusBadGateway, RedisErrorMessage)
}

// IsNotFound reports whether err represents a missing key or session.
func IsNotFound(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status == StatusNotFound
	}
	return errors.Is(err, redis.Nil)
}
