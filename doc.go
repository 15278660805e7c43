// Package infanps assembles the HTTP request-processing pipeline of the
// INFANPS web application: session lifecycle against a durable store,
// pluggable authentication, read-once flash messages, staged file uploads,
// baseline security headers, and a terminal error stage that wraps the
// whole chain.
//
// Business route groups (content management, user administration, security
// information, interactive activities) plug in as collaborators via the
// RouteGroup interface; each of their handlers receives a fully prepared
// request context.
package infanps
