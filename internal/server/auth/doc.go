// Package auth holds the cryptographic leaves of the identity core:
// PasswordHasher (bcrypt behind a bounded pool), TokenCodec (HS256 JWT with
// the algorithm pinned in code) and SessionIssuer (session/refresh pairs).
package auth
