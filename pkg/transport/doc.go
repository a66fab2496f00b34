// Package transport provides the byte-stream abstraction the RSP client
// runs over. Transports handle the "how" of data movement — TCP, serial,
// or an in-memory script — independent of what happens over the stream
// (which is the protocol layer's job).
//
// The contract is exact-length delivery or hard failure: ReceiveExact
// either fills the whole buffer or returns an error, so higher layers
// never deal with partial reads.
package transport
