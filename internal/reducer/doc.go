// Package reducer implements the §4.1 reducer runtime: the transaction
// envelope every mutating operation in the simulation runs inside, the
// Role-based authorization ladder, the long-running action state machine,
// and the error conventions the session layer depends on to route
// user-visible failures away from operator logs.
//
// A reducer in this codebase is not a special type — it is any Go function
// shaped `func(*Ctx, Args) *Error` that begins by resolving Ctx.Sender,
// authorizes against Role and/or the claim graph, validates preconditions,
// mutates through store.Table handles reachable from Ctx.Tx, and returns a
// single *Error (nil on success). Ctx.Tx must roll back on a non-nil
// return; callers are expected to call Tx.Rollback() themselves once a
// reducer returns an error, exactly as they call Tx.Commit() on success —
// the reducer itself never commits or rolls back its own transaction.
package reducer
