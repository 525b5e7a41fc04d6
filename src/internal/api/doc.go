// Package api serves the routes declared in a zyro configuration.
//
// Every declared (method, full path) pair answers with a canned
// acknowledgement:
//
//	{"message": "Successful"}
//
// Two internal endpoints describe the server:
//   - GET /_zyro/info returns the project, server settings and route table
//   - GET /_zyro/metrics exposes Prometheus metrics
//
// Error responses use the following format:
//
//	{
//	  "error": {
//	    "code": "not_found",
//	    "message": "Route /missing not found"
//	  }
//	}
//
// Server.Reload replaces the route table without restarting the listener.
package api
