// Package tokenstore provides persistent storage for cached session tokens.
//
// Two backends are available with different deployment tradeoffs:
//   - File: local filesystem storage with atomic writes and 0600 permissions
//   - Keyring: OS-native credential storage (macOS Keychain, Windows
//     Credential Manager, Linux Secret Service)
//
// Loading never fails on a missing or corrupt token; that state is reported
// as "no cached credential" so callers fall back to a fresh login.
package tokenstore
