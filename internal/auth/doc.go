// Package auth provides the authentication primitives of the user-auth
// service.
//
// This package implements:
//   - PBKDF2-SHA512 password hashing with per-user random salts
//   - constant-time hash comparison
//   - a bounded hashing pool so slow derivations cannot starve the process
//   - HS256 session tokens carrying {id, username, exp}
//
// Nothing here touches storage or HTTP; services compose these pieces.
package auth
