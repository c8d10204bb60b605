/*
Package api implements the simulation server that reportwatch connects to
during development, and the HTTP health server shared by both commands.

The gRPC server exposes two services built from hand-written service
descriptors over protobuf well-known types:

	dfproto.Core
	    BindMethod(Struct{method, plugin, input_msg, output_msg}) -> Int32Value
	    GetVersion(Empty) -> StringValue
	    GetDFVersion(Empty) -> StringValue
	    Notifications(Empty) -> stream Struct{color, text}
	dfproto.Reports
	    GetAnnouncements(Empty) -> Struct{reports: [...]}
	    GetReports(Empty) -> Struct{reports: [...]}

BindMethod answers NotFound for procedures the server does not provide and
InvalidArgument when the announced message types do not match. The lists
are served from a gamelog.Log. Every unary call goes through the logging
and metrics interceptors, and the standard grpc.health.v1 service reports
SERVING while the server runs.

HealthServer serves /health, /ready, /live and /metrics over HTTP. Readiness
runs the Check functions given to NewHealthServer on every request.
*/
package api
