// Package main provides the entry point of stups-auth-adapter.
// The adapter answers authentication plugin requests over HTTP: it verifies
// username/password pairs with the STUPS OAuth2 token issuer and finds users by
// searching the members of configured teams in the team service. A single service
// token, refreshed in the background, authenticates the team service calls.
package main
