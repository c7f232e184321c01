// Package session implements §4.6's identity, sign-in, and queue
// lifecycle: client-connect admission, the sign-in reducer, the grace-
// period timers that back both "you have N seconds after being admitted
// before we reclaim your slot" and "you have N seconds to confirm queue
// entry", disconnection, and cross-region player transfer over
// internal/mesh.
package session
