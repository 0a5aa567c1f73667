package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/agrimarket-api/internal/application/dto"
	"github.com/redis/go-redis/v9"
)

// INCR + PEXPIRE atómico: la ventana arranca con la primera petición.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RateLimit limita a max peticiones por ventana e IP, contando en Redis.
// Sin cliente o con max <= 0 no limita. Si Redis falla, deja pasar.
func RateLimit(rdb *redis.Client, prefix string, max int, window time.Duration) fiber.Handler {
	if rdb == nil || max <= 0 || window <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}
		ctx := c.UserContext()
		key := "rl:" + prefix + ":ip:" + c.IP()

		count, err := incrExpireScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Int()
		if err != nil {
			requestLogger(c).Warn().Err(err).Msg("rate limit: redis no disponible")
			return c.Next()
		}
		resetSec := 0
		if ttl, err := rdb.PTTL(ctx, key).Result(); err == nil && ttl > 0 {
			resetSec = int((ttl + time.Second - 1) / time.Second)
		}
		remaining := max - count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > max {
			if resetSec > 0 {
				c.Set(fiber.HeaderRetryAfter, strconv.Itoa(resetSec))
			}
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "RATE_LIMITED", Message: "demasiados intentos, espere un momento"})
		}
		return c.Next()
	}
}
