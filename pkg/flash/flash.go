// Package flash queues read-once notification messages in the session.
//
// A message pushed during one request is rendered by the next request and
// then gone: DrainAll snapshots and clears the queues in a single step, so
// no later stage of the same request — and no following request — can see a
// message twice.
package flash

import "github.com/Eerick6/infanps/pkg/session"

// Categories used across the application. Handlers may use arbitrary
// category names; these two match the legacy template variables.
const (
	CategoryMessage = "message"
	CategorySuccess = "success"
)

// Push appends a message to the category's queue in the current session
// record. The message is visible starting with the next request only.
func Push(sess *session.Session, category, message string) {
	sess.PushFlash(category, message)
}

// DrainAll returns the full flash contents and atomically clears them from
// the session record. The request context builder calls this exactly once
// per request; everything else should read the drained snapshot.
func DrainAll(sess *session.Session) map[string][]string {
	return sess.DrainFlash()
}

// Peek returns the messages queued for a category without draining. Intended
// for tests and diagnostics only — rendering paths must drain.
func Peek(sess *session.Session, category string) []string {
	if sess == nil || sess.Flash == nil {
		return nil
	}
	return sess.Flash[category]
}
