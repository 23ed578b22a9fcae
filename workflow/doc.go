// Package workflow keeps repeating production jobs alive and throttles them
// against inventory targets.
//
// A Workflow owns three pieces of state for one loaded session: the job
// registry, which shadows every supported repeating job and rebuilds the ones
// that vanish; the constraint list, persisted per session; and the option
// flags. Every entry point expects the caller to hold the host's exclusive
// critical section for the whole call. Nothing in this package locks.
//
// The control loop has two cadences. Every few frames a liveness pass notices
// lost jobs and retries their recovery. Every half day a reconciliation pass
// infers what each job produces, counts the matching free items and resumes or
// suspends jobs with a hysteresis band per constraint.
package workflow
