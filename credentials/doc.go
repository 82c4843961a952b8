// Package credentials provides signet.CredentialProvider implementations that
// load signing key material from trusted files on the host.
//
// Providers read their file on every call. Wrap a provider with Cached to load
// once and share the result across concurrent requests:
//
//	provider := credentials.Cached(credentials.NewServiceAccountFile("/app/sa.json"))
//
// Every error wraps signet.ErrCredential and never includes key material.
package credentials
