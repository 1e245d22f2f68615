// compression.go: asynchronous external-program compression of rotated backups
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const defaultCompressionTimeout = 60 * time.Second

// CompressionSpec names the external program used to compress rotated
// backups (e.g. gzip, bzip2, xz) and the argument template applied to the
// backup path. Args use "{}" as the path placeholder; if no placeholder is
// present the path is appended as the final argument.
type CompressionSpec struct {
	Program string
	Args    []string
	Timeout time.Duration
}

func (s CompressionSpec) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return defaultCompressionTimeout
}

func (s CompressionSpec) buildArgs(path string) []string {
	if len(s.Args) == 0 {
		return []string{path}
	}
	args := make([]string, 0, len(s.Args))
	used := false
	for _, a := range s.Args {
		if strings.Contains(a, "{}") {
			args = append(args, strings.ReplaceAll(a, "{}", path))
			used = true
		} else {
			args = append(args, a)
		}
	}
	if !used {
		args = append(args, path)
	}
	return args
}

// CompressionRunner compresses rotated backup files on a dedicated worker
// goroutine, out-of-band from the sink performing the rotation. Requests
// that fail, time out, or name an absent program are diagnostic-only: the
// uncompressed backup is left in place.
type CompressionRunner struct {
	spec    CompressionSpec
	queue   chan string
	done    chan struct{}
	drained sync.WaitGroup
}

// NewCompressionRunner starts a worker goroutine draining compression
// requests for spec. queueSize bounds the number of pending backups.
func NewCompressionRunner(spec CompressionSpec, queueSize int) *CompressionRunner {
	if queueSize <= 0 {
		queueSize = 64
	}
	r := &CompressionRunner{
		spec:  spec,
		queue: make(chan string, queueSize),
		done:  make(chan struct{}),
	}
	r.drained.Add(1)
	go r.run()
	return r
}

// Enqueue submits path for asynchronous compression. If the queue is full
// the request is dropped and a diagnostic is reported - compression must
// never apply backpressure to rotation.
func (r *CompressionRunner) Enqueue(path string) {
	select {
	case r.queue <- path:
	default:
		reportDiagnostic("compression-runner", newComponentError(ErrCodeCompressionFailed, "queue full, dropping: "+path))
	}
}

func (r *CompressionRunner) run() {
	defer r.drained.Done()
	for {
		select {
		case path, ok := <-r.queue:
			if !ok {
				return
			}
			r.compress(path)
		case <-r.done:
			// drain whatever is already queued, then exit
			for {
				select {
				case path := <-r.queue:
					r.compress(path)
				default:
					return
				}
			}
		}
	}
}

func (r *CompressionRunner) compress(path string) {
	defer recoverAsDiagnostic("compression-runner")

	if _, err := exec.LookPath(r.spec.Program); err != nil {
		reportDiagnostic("compression-runner", newComponentError(ErrCodeCompressionFailed, "program not found: "+r.spec.Program))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.spec.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, r.spec.Program, r.spec.buildArgs(path)...)
	if err := cmd.Run(); err != nil {
		reportDiagnostic("compression-runner", newComponentError(ErrCodeCompressionFailed, "compress "+path+": "+err.Error()))
		return
	}
}

// Shutdown signals the worker to drain its queue and stop, waiting up to
// timeout for it to finish.
func (r *CompressionRunner) Shutdown(timeout time.Duration) {
	close(r.done)
	waitCh := make(chan struct{})
	go func() {
		r.drained.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
	case <-time.After(timeout):
		reportDiagnostic("compression-runner", newComponentError(ErrCodeCompressionFailed, "shutdown timed out, requests may be lost"))
	}
}
