// Package ws carries the chat protocol over websocket connections.
//
// Each connection runs one read loop (decoding join/sendMessage envelopes)
// and one write loop draining a buffered outbound channel. Conn implements
// chat.Sink, so the registry fans events straight into the channel; a
// consumer that falls a full buffer behind is disconnected rather than
// blocking fan-out. Liveness is ping/pong: the write loop pings on an
// interval and the read deadline is refreshed by each pong, so a dead peer
// is reaped without waiting for TCP.
package ws
