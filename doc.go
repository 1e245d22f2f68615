// Package ember provides a high-throughput, low-latency structured logging
// engine for Go applications.
//
// Producer goroutines call Logger methods at the hot path; events flow
// either directly to a fixed set of Sinks or, when a Logger is constructed
// with an AsyncDispatcher, through a lock-free multi-producer/multi-consumer
// RingBuffer drained by a dedicated background worker. Layouts turn an
// Event into bytes; Sinks commit those bytes durably, handling rotation,
// batching, or memory-mapped writes depending on which concrete Sink is
// wired in.
//
// # Quick start
//
//	console := ember.NewConsoleSink("console", os.Stdout, ember.LevelInfo, ember.NewPatternLayout("%date %level [%logger] %message%n"), true)
//	registry := ember.NewLoggerRegistry(ember.LevelInfo, console)
//	defer registry.Shutdown()
//
//	log := registry.GetLogger("app") // starts with no sinks of its own
//	log.AddSink(console)
//	log.Info("listening on {}", ":8080")
//
// # Configuration
//
// Config is assembled from a Settings map supplied by an external loader
// (flags, environment, a parsed config file) via Apply:
//
//	cfg := ember.DefaultConfig()
//	if err := ember.Apply(cfg, settings); err != nil {
//		return err
//	}
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
//
// # Async dispatch
//
// Wrap a slower sink (rolling file, mapped file) behind an AsyncDispatcher
// to keep the producer's hot path off the filesystem:
//
//	dispatcher, _ := ember.NewAsyncDispatcher(cfg.Async.BufferSize, cfg.Async.OverflowStrategy, []ember.Sink{fileSink})
//	asyncLogger := registry.RegisterAsyncLogger("async", ember.LevelInfo, dispatcher)
package ember
