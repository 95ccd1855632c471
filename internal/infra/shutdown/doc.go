// Package shutdown coordinates orderly termination of cfkv commands.
//
// A Handler turns SIGINT and SIGTERM into context cancellation and runs
// registered cleanup hooks, newest first, within a timeout:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	ctx, stop := h.NotifyContext(context.Background())
//	defer stop()
//	h.OnShutdown(store.Close)
//	...
//	err := h.Shutdown()
package shutdown
