// Package redis wraps the go-redis client with retrying connection setup and
// a health-check helper.
//
// The platform uses Redis as an optional session store backend; see
// session.NewRedisStore. Configuration is environment-driven via Config.
package redis
