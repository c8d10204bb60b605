/*
Package rpc defines the remote procedure contract between the viewer and the
game-automation server.

A Transport opens one connection at a time. Before any data call the client
binds every procedure it intends to use; binding asks the server to resolve
the plugin, method name and message types, and yields a Handle tied to the
connection it was bound on. Handles from an earlier connection are rejected
with ErrNotBound.

Messages are protobuf well-known types: requests are google.protobuf.Empty,
version queries reply with a StringValue, and the two report procedures reply
with a Struct holding a "reports" list. EncodeReportList and DecodeReportList
convert between that Struct and []types.Report.

Transports also emit events outside of calls: connection changes and server
log lines (colour and text), delivered to the Handler installed with
SetHandler.
*/
package rpc
