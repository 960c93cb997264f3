// Package config loads the process configuration from environment variables.
//
// Each concern owns a nested struct. Library packages contribute their own
// structs (logger.Config, redis.Config) so their env tags live next to the
// code that reads them.
//
//	REDIS_URL=redis://cache:6379/0 CACHE_DRIVER=redis WARMUP_FIXTURE=/etc/shopcache/warmup.yaml shopcache
package config
