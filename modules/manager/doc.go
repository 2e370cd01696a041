// Package manager exposes the administration area of the platform,
// restricted to accounts with the ADMIN role.
package manager
