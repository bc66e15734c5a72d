// Package instagram provides the HTTP clients igfeed uses to reach Instagram.
//
// GraphClient lists an account's media through the Graph API and needs a
// user id plus a long-lived access token. WebClient reads the public
// profile JSON served to the web app and needs nothing but a username.
// Both embed Client, which also streams image downloads.
//
// Failures are returned as *errors.Error values from igfeed/pkg/errors so
// callers can branch on the error type:
//
//	media, err := graph.FetchMedia(ctx, userID, token, instagram.DefaultMediaLimit)
//	if errors.IsType(err, errors.ErrorTypeAuth) {
//	    // token expired or revoked
//	}
package instagram
