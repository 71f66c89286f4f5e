// Package userdirectory keeps a profile document per authenticated user.
// Identity itself lives with the external auth provider; this module stores
// the mutable profile, tracks last login, and carries the lock flag the
// admin screens toggle.
package userdirectory
