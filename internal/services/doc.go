// Package services talks to a running stripd device over its HTTP API.
//
// [APIService] performs raw requests and keeps the status, headers and body of every response. [DeviceClient]
// builds on it with typed calls for each endpoint: [DeviceClient.Now], [DeviceClient.Data] and
// [DeviceClient.Replace].
//
// # Error Handling
//
// Transport failures are returned as-is. Responses with a non-2xx status wrap [shared.ErrAPIRequest] and carry the
// error message from the device's JSON error body when there is one.
package services
