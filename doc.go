// Package reporting provides a durable, best-effort pipeline that reports
// push-notification delivery and open receipts to a backend analytics
// endpoint. Receipts survive process death and offline periods: each one is
// encoded into a flat key-value payload, persisted through a store backend,
// and submitted with at-least-once semantics until the backend accepts it
// or rejects it permanently.
//
// Reporting is a library, not a service. Configure a store and a submitter,
// then hand receipts to a Reporter:
//
//	r, err := reporting.New(
//	    reporting.WithStore(memory.New()),
//	    reporting.WithSubmitter(api.NewClient("https://reporting.example.com")),
//	)
//	if err != nil { ... }
//	if err := r.Start(ctx); err != nil { ... }
//
//	err = r.ReportDelivery(ctx, event.Delivery{
//	    Fields: event.Fields{
//	        InstanceID: "inst-1",
//	        PublishID:  "pub-42",
//	        Timestamp:  time.Now().Unix(),
//	    },
//	    AppInBackground: true,
//	})
//
// # Architecture
//
// Each subsystem lives in its own package: event (receipt variants),
// payload (the durable codec and its compatibility rules), classify (the
// retry/terminal decision), worker (the per-invocation executor), scheduler
// (the host bindings), and store (backends implementing report.Store).
// The two scheduler bindings share one executor and one codec, so their
// behavior can only diverge in when invocations happen, never in what an
// invocation does.
//
// The pipeline promises at-least-once submission, not exactly-once: a crash
// between a successful submission and the store delete redelivers the
// receipt. Deduplication, if any, belongs to the backend.
package reporting
