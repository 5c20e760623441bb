// Package common contains shared constants and sentinel errors used across
// ExpenseKeeper components.
package common

// SessionCookieName is the cookie carrying the signed session token between
// the client and the API server.
const SessionCookieName = "ek_session"
