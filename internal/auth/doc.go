// Package auth verifies user passwords against the OAuth2 token issuer.
//
// A PasswordVerifier performs a resource owner password grant in the employee realm
// with the client credentials of this application. The issued token is discarded,
// only the fact that the issuer accepted the password matters.
//
// Every verification ends in exactly one Outcome:
//   - Authenticated: the issuer answered 200 with a token document
//   - Rejected: the issuer answered with any other status, a normal business outcome
//   - InternalError: configuration, transport or protocol trouble
//
// Passwords and the client secret never show up in logs or in Result.Detail.
//
// Example usage:
//
//	verifier := auth.NewPasswordVerifier(auth.PasswordConfig{
//	    TokenURL: tokenURL, // already carrying ?realm=/employees
//	    Scopes:   []string{"uid"},
//	}, credentials.NewStore(dir), httpClient)
//
//	res := verifier.Verify(ctx, "alice", "secret")
//	if res.Outcome == auth.Authenticated {
//	    // ...
//	}
package auth
