// Package api holds the LaunchService wire contract shared by the server and
// the client: request and response messages, the JSON codec they travel in,
// the service descriptor and a typed client stub.
package api
