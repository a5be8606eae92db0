// Package services is the adapter between the application and the TMDB v3 HTTP API.
//
// # Result Shape
//
// [Client.Get], [Client.Post], [Client.Put] and [Client.Delete] never return a Go error. Every outcome is a [Result]:
//
//	{Data: body, Error: "", Status: 200}                   success
//	{Data: body, Error: status_message, Status: 4xx/5xx}   API-reported failure
//	{Error: "An error occurred", Status: 500}             transport failure
//
// Every request carries the api_key query parameter. When a v4 read access token is configured it is also sent
// as a bearer token through an [oauth2.Transport].
//
// # Typed Decoding
//
// Endpoint methods decode through [Decode], which unmarshals into a models type and calls its Validate method.
// Malformed payloads are rejected with [shared.ErrInvalidResponse] instead of leaking partially filled structs.
// API failures surface as [*APIError], which keeps the HTTP status so callers can tell transient failures
// (5xx, 429) from rejections.
//
// # Rate Limiting
//
// An optional [rate.Limiter] paces outgoing requests. There are no retries at this layer.
package services
