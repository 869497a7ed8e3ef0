// Package ws implements the WebSocket change feed over the board state.
//
// New(state, keepalive) creates a Hub subscribed to the board state.
// Hub.Run(ctx) blocks until ctx is cancelled, then unsubscribes and closes
// every connection.
// Hub.ServeHTTP upgrades a request, sends the current summary at once and
// then streams one message per board mutation plus a periodic keepalive.
//
// Message format:
//
//	{
//	  "event": "snapshot" | "keepalive" | "rebuilt" | "metric" | "ramp" | "detail" | "scroll",
//	  "data":  { same schema as GET /api/v1/board }
//	}
//
// The endpoint is mounted at /ws/stream.
package ws
