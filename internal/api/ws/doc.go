// Package ws implements the boundary adapter: a websocket channel carrying
// request/response envelopes plus pushed lifecycle notifications.
//
// Every inbound envelope names a channel, carries a caller correlation id,
// and a payload typed per channel. Payloads are validated exhaustively
// before any state is touched; internal failures are mapped onto the
// external error taxonomy; the correlation id is echoed back unchanged so
// callers can match responses over the asynchronous boundary.
//
// Workspace and tab lifecycle events are pushed on the same connection,
// tagged by entity channel. Delivery is best-effort: a client that is not
// connected misses events, nothing is buffered or replayed.
package ws
