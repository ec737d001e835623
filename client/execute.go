package client

import (
	"context"
	"sync/atomic"

	"github.com/adamwoolhether/network/apierror"
	"github.com/adamwoolhether/network/request"
)

const msgNilExecutor = "No executor configured."

// Execute runs r through e and returns the decoded response body.
// It blocks until the exchange finishes or ctx ends. Every failure is an
// [*apierror.Error].
func Execute[T any](ctx context.Context, e Executor, r request.Requester) (T, error) {
	var v T
	if e == nil {
		return v, apierror.UnknownError(msgNilExecutor)
	}
	if err := e.Do(ctx, r, &v); err != nil {
		var zero T
		return zero, toAPIError(err)
	}

	return v, nil
}

// Publisher delivers the outcome of one request to its subscribers.
// The request is built when the Publisher is created; each call to
// [Publisher.Sink] performs the exchange on its own goroutine.
type Publisher[T any] struct {
	ctx  context.Context
	exec Executor
	desc *request.Descriptor
	err  error
}

// Publish builds r and returns a Publisher for it. When building fails
// the Publisher is already failed: every subscriber receives the
// [apierror.KindURL] error and no request is sent. A nil e fails the
// same way with an [apierror.KindUnknown] error.
func Publish[T any](ctx context.Context, e Executor, r request.Requester) *Publisher[T] {
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := r.Build()
	if err != nil {
		return &Publisher[T]{ctx: ctx, err: toURLError(err)}
	}
	if e == nil {
		return &Publisher[T]{ctx: ctx, err: apierror.UnknownError(msgNilExecutor)}
	}

	return &Publisher[T]{ctx: ctx, exec: e, desc: d}
}

// Err returns the setup failure, or nil if the Publisher is ready to run.
func (p *Publisher[T]) Err() error {
	return p.err
}

// Sink subscribes to the Publisher. Exactly one terminal event is delivered,
// asynchronously: either receiveValue followed by receiveCompletion(nil), or
// receiveCompletion with an [*apierror.Error]. Nil callbacks are skipped.
// Nothing is delivered once the Subscription is cancelled.
//
// Callbacks run on the subscription goroutine and must not call
// [Subscription.Wait].
func (p *Publisher[T]) Sink(receiveValue func(T), receiveCompletion func(error)) *Subscription {
	ctx, cancel := context.WithCancel(p.ctx)
	s := &Subscription{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer func() {
			cancel()
			close(s.done)
		}()

		var v T
		err := p.err
		if err == nil {
			v, err = Execute[T](ctx, p.exec, p.desc)
		}

		if !s.state.CompareAndSwap(statePending, stateDelivered) {
			return
		}

		if err != nil {
			if receiveCompletion != nil {
				receiveCompletion(err)
			}
			return
		}

		if receiveValue != nil {
			receiveValue(v)
		}
		if receiveCompletion != nil {
			receiveCompletion(nil)
		}
	}()

	return s
}

// Await subscribes and blocks until the terminal event.
func (p *Publisher[T]) Await() (T, error) {
	var (
		v   T
		err error
	)

	s := p.Sink(func(val T) { v = val }, func(e error) { err = e })
	s.Wait()

	return v, err
}

const (
	statePending int32 = iota
	stateDelivered
	stateCancelled
)

// Subscription is the handle returned by [Publisher.Sink]. The caller
// that created it owns it.
type Subscription struct {
	state  atomic.Int32
	done   chan struct{}
	cancel context.CancelFunc
}

// Cancel stops delivery if it has not started and aborts the request.
func (s *Subscription) Cancel() {
	s.state.CompareAndSwap(statePending, stateCancelled)
	s.cancel()
}

// Cancelled reports whether Cancel won against delivery.
func (s *Subscription) Cancelled() bool {
	return s.state.Load() == stateCancelled
}

// Done returns a channel that is closed once the terminal event was
// delivered or the subscription was cancelled and its goroutine exited.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Wait blocks until Done is closed.
func (s *Subscription) Wait() {
	<-s.done
}
