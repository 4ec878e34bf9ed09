package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/guias-api/internal/application/ledger"
	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/pkg/logger"
)

var _ ledger.Locker = (*RedisLocker)(nil)

// RedisConfig parámetros del bloqueo distribuido.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	TTL        time.Duration // vida máxima del bloqueo si el proceso muere sin liberarlo
	RetryEvery time.Duration
	MaxRetries int
}

// RedisLocker bloqueo por empresa compartido entre réplicas del servicio.
// Clave: "ledger:company:<id>".
type RedisLocker struct {
	locker *redislock.Client
	cfg    RedisConfig
	log    *logger.Logger
}

// NewRedisClient crea el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// NewRedisLocker construye el locker sobre un cliente ya conectado.
func NewRedisLocker(rdb redis.UniversalClient, cfg RedisConfig, log *logger.Logger) *RedisLocker {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.RetryEvery <= 0 {
		cfg.RetryEvery = 50 * time.Millisecond
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 100
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RedisLocker{locker: redislock.New(rdb), cfg: cfg, log: log.Component("redis_lock")}
}

// Lock obtiene el bloqueo de la empresa reintentando con espera lineal.
func (r *RedisLocker) Lock(ctx context.Context, companyID string) (func(), error) {
	key := "ledger:company:" + companyID
	lock, err := r.locker.Obtain(ctx, key, r.cfg.TTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(r.cfg.RetryEvery), r.cfg.MaxRetries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", domain.ErrBusy, key)
	}
	if err != nil {
		return nil, fmt.Errorf("obtener bloqueo %s: %w", key, err)
	}
	return func() {
		// contexto propio: el del request puede estar cancelado al liberar
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(relCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			r.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el bloqueo")
		}
	}, nil
}
