// Package report defines the durable report entity and its store interface.
//
// A [Report] pairs an encoded receipt payload with the scheduling metadata
// the host needs to drive at-least-once submission:
//
//	pending → active → (submitted, deleted)
//	pending → active → retrying → active → ...
//	pending → active → (dropped, deleted)
//
// Submitted and dropped are not persisted states — both outcomes discard
// the payload, so the report is simply deleted.
//
// [Store] is the persistence contract implemented by the backends under
// store/. Reports are written at enqueue time and survive process death;
// after a restart the scheduler binding picks up where the queue left off.
package report
