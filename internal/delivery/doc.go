// Package delivery redeems download tokens.
//
// Open maps a token to its artifact, WriteTo streams it in bounded chunks and
// Close deletes it, so every redemption consumes the token whether or not the
// client read the whole body.
package delivery
