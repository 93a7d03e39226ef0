// Package http provides the request and response helpers used by the admin
// API.
//
// # Request
//
//	req := gohttp.NewRequest(r)
//	body, err := req.Body()       // at most 1 MB
//	module := req.Query("module") // optional narrowing
//	name := req.RouteParam("name")
//	codec := req.Codec()          // "yaml" or "json", from Content-Type
//
// # Response
//
//	res := gohttp.NewResponse(w)
//	res.Success(v)   // 200 {"data": v}
//	res.Created(v)   // 201 {"data": v}
//	res.NoContent()  // 204
//	res.Fail(err)    // status from StatusFor, {"message": err}
//
// Bodies are canonical JSON (RFC 8785): keys sorted, no insignificant
// whitespace.
package http
