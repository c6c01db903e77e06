// Package audithook bridges report lifecycle events to an audit trail
// backend.
//
// Every lifecycle hook emits a structured audit event through the
// [Recorder] interface. The hook assigns severity levels (info for normal
// operations, warning for retries, critical for drops) and metadata (event
// type, attempts, errors).
//
// # Usage
//
//	h := audithook.New(audithook.RecorderFunc(func(ctx context.Context, evt *audithook.AuditEvent) error {
//	    return trail.Write(ctx, evt.Action, evt.ResourceID, evt.Metadata)
//	}))
//	r, err := reporting.New(
//	    reporting.WithStore(store),
//	    reporting.WithSubmitter(submitter),
//	    reporting.WithHook(h),
//	)
//
// # Selective filtering
//
//	audithook.New(recorder,
//	    audithook.WithActions(
//	        audithook.ActionReportDropped,
//	    ),
//	)
package audithook
