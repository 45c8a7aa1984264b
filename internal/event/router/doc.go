// Package router delivers decoded accessibility events to registered
// handlers.
//
// Handlers subscribe by key. A key is one of:
//
//   - a registry tag such as "Object:", matching every member of a group
//   - a signal key such as "Object:StateChanged", matching one member
//   - "*", matching every event
//
// Route runs the matching handlers synchronously in the caller's goroutine,
// lowest priority value first. A panicking handler is recovered and
// reported as a *PanicError; it does not stop delivery to the remaining
// handlers.
//
// # Usage
//
//	r := router.New(router.WithCatalog(dispatch.Default()))
//	sub, err := r.Subscribe("Object:StateChanged", router.HandlerFunc(
//	    func(ctx context.Context, ev event.Event) error {
//	        sc := ev.(events.StateChanged)
//	        log.Printf("%s %s=%d", sc.Item, sc.State, sc.Enabled)
//	        return nil
//	    }),
//	    router.WithPriority(router.PriorityHigh),
//	)
//	if err != nil {
//	    return err
//	}
//	defer sub.Cancel()
//
//	if err := r.Route(ctx, ev); err != nil {
//	    // one or more handlers failed
//	}
//
// # Thread Safety
//
// Router is safe for concurrent use. Subscriptions may be added, paused or
// cancelled while events are being routed; a Route call works on a snapshot
// of the subscriptions taken when it starts.
package router
