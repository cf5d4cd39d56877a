// Package webview shows the extension list in the user's browser.
//
// A Server listens on a local address and serves at most one Panel at a
// time: GET / returns the rendered list and GET /ws is a websocket the page
// keeps open to receive reload notices and to send back actions. When the
// last browser tab disconnects and none reconnects within the grace period,
// the panel reports that the user dismissed it.
package webview
