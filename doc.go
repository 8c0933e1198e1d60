// Package zkterm is a client for the binary protocol spoken by network
// attached biometric attendance terminals (fingerprint, face, and card
// readers) — session handshake and auth, the chunked bulk-read subprotocol
// used to pull large datasets off the device, entity codecs for users,
// fingerprint templates, and attendance rows, and a pull-style live-capture
// event pipeline.
//
// Connection flow:
//
//	c := zkterm.NewClient("192.168.1.201", zkterm.WithPassword(0))
//	if err := c.Connect(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer c.Disconnect(ctx)
//
//	users, err := c.GetUsers(ctx)
//
// A Client tries a TCP connection first and falls back to UDP if that
// fails; WithForceUDP skips the TCP attempt. A Client is not safe for
// concurrent use by multiple goroutines issuing overlapping operations —
// its internal mutex only serializes calls against each other, it does not
// let two callers usefully interleave a bulk read with another command.
package zkterm
