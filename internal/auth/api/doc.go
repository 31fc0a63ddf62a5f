// Package authapi wires Lingua's HTTP auth endpoints to the identity and
// session services: login, federated login, refresh, logout, and /me.
//
// Delivery of the refresh secret is platform-dependent: native clients
// (flagged by the X-Client header) receive it in the response body, browsers
// receive it as an HttpOnly strict-same-site cookie and never see it in page
// script.
package authapi
