package config

import "time"

// Redis опционален: без адреса покупки не ограничиваются по частоте.
type Redis struct {
	Address            string        `env:"REDIS_ADDRESS"`
	Username           string        `env:"REDIS_USERNAME"`
	Password           string        `env:"REDIS_PASSWORD" json:"-"`
	DatabaseNumber     int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize           int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConnections int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"1"`
	MaxIdleConnections int           `env:"REDIS_MAX_IDLE_CONNS" envDefault:"5"`
	PurchaseLimit      int           `env:"REDIS_PURCHASE_LIMIT" envDefault:"10"`
	PurchaseWindow     time.Duration `env:"REDIS_PURCHASE_WINDOW" envDefault:"1m"`
}

func (r Redis) Enabled() bool {
	return r.Address != ""
}
