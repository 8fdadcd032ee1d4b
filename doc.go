// Package authstate mirrors the session of an external authentication client
// into a snapshot that UI code can read synchronously, and exposes the login,
// register and logout actions next to it.
//
// Provider lifecycle:
//   - NewProvider wraps a Client. Mount subscribes to the client's session
//     stream and returns a context scoped with the provider; UseAuth reads it
//     back and fails with ErrOutsideProvider anywhere else.
//   - Every upstream emission is projected into a User (name falls back to
//     the email local part, timestamps to now) and published together with
//     the authenticated flag, so both always change at once.
//   - Close (or cancelling the mount context) unsubscribes. Publishes that
//     arrive afterwards are dropped.
//
// Actions:
//   - Login and Register mark the provider as loading, call the client and
//     publish the returned user right away. Failures are logged, recorded and
//     returned; the state is left untouched.
//   - Logout is best effort: a failed sign out is logged and swallowed.
//
// Activity sinks:
//   - ActivitySink receives an event for every sync and action. Sinks run
//     best effort (errors are logged). See the metrics package for a
//     Prometheus sink and activitymap for a transport-agnostic shape.
package authstate
