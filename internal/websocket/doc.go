// Package websocket pushes dataset change notifications to open dashboard
// pages. A Hub fans messages out to Clients, each served by a read pump and a
// write pump over a gorilla/websocket connection.
package websocket
