// Package pipeline sequences one song job: pitch shift, split, per-stem
// transcode, archive, single-file transcode, and cleanup.
//
// Each Run owns an explicit State. Stages never mutate it directly; they
// return a stageEffect that Run applies at the call site, so every change to
// the pending-deletion set is visible in one place. Cleanup is deferred and
// runs exactly once on every exit path: Pending is always drained, and
// Provisional (planned deliverables) is drained too when the job fails, so a
// failed job leaves no partial output behind.
//
// Run never returns an error or panics. Failures are classified into the
// services failure kinds and reported through Result.
package pipeline
