/*
Package authsdk is the client SDK and wire vocabulary of the waggle
authentication service.

# Overview

The service speaks JSON over HTTP and wraps every body in the same
envelope:

	{"code": "SUCCESS", "message": "...", "data": {...}}

Failures carry one of the Code* constants in "code". The same APIError
values are used by the server to write errors and by the client to report
them, so callers can branch with errors.Is:

	_, err := session.Refresh(ctx)
	if errors.Is(err, authsdk.ErrTokenExpired) {
		// log in again
	}

# SDKClient vs Session

SDKClient covers the public endpoints and logs in:

	client := authsdk.NewSDKClient("https://auth.example.com")

	available, err := client.UsernameAvailable(ctx, "ada_l")
	session, err := client.Login(ctx, "ada_l", "correct-Horse1!")

Login returns a Session. The refresh credential only ever travels as an
HttpOnly cookie, so the client keeps it in a cookie jar and a Session
refreshes its access credential transparently shortly before it expires:

	me, err := session.Me(ctx)
	err = session.Logout(ctx)

A Session is safe for concurrent use. Refreshes are serialised so that
two goroutines never present the same refresh credential twice, which the
service would reject as a mismatch.
*/
package authsdk
