// Package identity exposes the user/account records consumed by the auth
// token lifecycle.
//
// The account store itself is owned elsewhere; this package is the read-side
// adapter the session subsystem depends on. It deliberately knows nothing
// about passwords or federated identity: credential verification and
// code-for-email exchange are separate collaborators plugged into the HTTP
// layer.
package identity
