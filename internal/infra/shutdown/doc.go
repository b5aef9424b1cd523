// Package shutdown coordinates graceful process termination.
//
// Components register named hooks as they start. Wait blocks until
// SIGINT/SIGTERM arrives, the context is cancelled or Trigger is called,
// then runs the hooks in reverse registration order under one timeout,
// so the last component started is the first one stopped.
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown("redis server", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
