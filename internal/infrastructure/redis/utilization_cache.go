// Package redis implementa la caché de utilización por empleado sobre Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goRedis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Recursos-api/internal/application/dto"
	"github.com/jhoicas/Recursos-api/internal/application/ports"
	"github.com/jhoicas/Recursos-api/pkg/config"
)

var _ ports.UtilizationCache = (*UtilizationCache)(nil)

const (
	keyPrefix = "utilization:"
	genPrefix = "utilization_gen:"
)

// setIfGeneration escribe el valor solo si la generación del empleado no cambió.
// KEYS[1] valor, KEYS[2] generación; ARGV[1] generación leída, ARGV[2] payload, ARGV[3] TTL en ms.
var setIfGeneration = goRedis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// NewClient crea el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goRedis.Client, error) {
	client := goRedis.NewClient(&goRedis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// UtilizationCache guarda EmployeeUtilizationDTO como JSON con TTL, junto a un
// contador de generación por empleado sin expiración.
type UtilizationCache struct {
	client *goRedis.Client
	ttl    time.Duration
}

// NewUtilizationCache construye la caché. ttl <= 0 usa 10 minutos.
func NewUtilizationCache(client *goRedis.Client, ttl time.Duration) *UtilizationCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &UtilizationCache{client: client, ttl: ttl}
}

// Get devuelve (nil, false, nil) si no hay entrada.
func (c *UtilizationCache) Get(ctx context.Context, employeeID string) (*dto.EmployeeUtilizationDTO, bool, error) {
	raw, err := c.client.Get(ctx, key(employeeID)).Bytes()
	if err != nil {
		if errors.Is(err, goRedis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var u dto.EmployeeUtilizationDTO
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, false, fmt.Errorf("decode utilization: %w", err)
	}
	return &u, true, nil
}

// Generation devuelve la generación actual del empleado (0 si nunca se invalidó).
func (c *UtilizationCache) Generation(ctx context.Context, employeeID string) (int64, error) {
	raw, err := c.client.Get(ctx, genKey(employeeID)).Result()
	if err != nil {
		if errors.Is(err, goRedis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode generation: %w", err)
	}
	return gen, nil
}

// Set guarda la utilización si la generación sigue siendo gen. La comparación y
// la escritura son atómicas en el servidor.
func (c *UtilizationCache) Set(ctx context.Context, employeeID string, gen int64, u *dto.EmployeeUtilizationDTO) (bool, error) {
	payload, err := json.Marshal(u)
	if err != nil {
		return false, fmt.Errorf("encode utilization: %w", err)
	}
	stored, err := setIfGeneration.Run(ctx, c.client,
		[]string{key(employeeID), genKey(employeeID)},
		strconv.FormatInt(gen, 10), payload, c.ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("redis set: %w", err)
	}
	return stored == 1, nil
}

// Invalidate incrementa la generación y borra la entrada de cada empleado en una
// sola transacción MULTI/EXEC.
func (c *UtilizationCache) Invalidate(ctx context.Context, employeeIDs ...string) error {
	if len(employeeIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(employeeIDs))
	_, err := c.client.TxPipelined(ctx, func(pipe goRedis.Pipeliner) error {
		for _, id := range employeeIDs {
			pipe.Incr(ctx, genKey(id))
			keys = append(keys, key(id))
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}

func key(employeeID string) string {
	return keyPrefix + employeeID
}

func genKey(employeeID string) string {
	return genPrefix + employeeID
}
