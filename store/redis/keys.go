package redis

// Redis key naming conventions for reporting data.
// All keys are prefixed with "reporting:" to avoid collisions.

const keyPrefix = "reporting:"

// reportKey returns the Hash key for a report entity: reporting:report:{id}
func reportKey(id string) string { return keyPrefix + "report:" + id }

// dueKey is the Sorted Set ordering reports by RunAt (unix seconds score).
const dueKey = keyPrefix + "due"

// activeKey is the Sorted Set tracking claimed reports by claim time
// (unix seconds score). Entries older than the stale threshold belong to
// a process that died mid-invocation.
const activeKey = keyPrefix + "active"

// reportIDsKey is the Set tracking all report IDs for enumeration.
const reportIDsKey = keyPrefix + "report_ids"
