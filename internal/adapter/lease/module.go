package lease

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/shopcore/internal/config"
)

// Module provides the lease implementation matching the deployment.
var Module = fx.Options(
	fx.Provide(newLease),
	fx.Invoke(registerLifecycle),
)

type leaseParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newLease(p leaseParams) Lease {
	if p.Config.RedisAddr == "" {
		p.Logger.Warn("redis not configured, payment leases are process-local")
		return NewLocalLease()
	}
	return NewRedisLease(p.Config.RedisAddr)
}

func registerLifecycle(lc fx.Lifecycle, l Lease) {
	redisLease, ok := l.(*RedisLease)
	if !ok {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return redisLease.Close()
		},
	})
}
