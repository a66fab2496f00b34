// Package rsp implements the flash-programming subset of the GDB Remote
// Serial Protocol.
//
// A Client owns one transport.Transport and drives strict command/response
// round-trips over it: every outbound command is framed as
//
//	$<payload>#<2-hex-digit checksum>
//
// acknowledged by the peer with a single '+' or '-', and answered with one
// packet in the same envelope. Binary payload bytes that collide with the
// framing characters are escaped before transmission.
//
// On top of the round-trip primitive the package provides the vFlashErase /
// vFlashWrite / vFlashDone command family, a generic memory-read helper,
// and a parser for the qXfer memory-map document that describes the
// target's flash regions.
package rsp
