// Package redis wraps go-redis connection setup with startup retries and a
// readiness probe. The session store uses it as its shared backend so
// authenticated sessions survive process restarts.
package redis
