package clog

import (
	"context"
	"sync"
)

type ctxLog struct {
	mu         sync.RWMutex
	attributes map[string]any
}

type ctxLogKey struct{}

// ContextWithLog attaches a mutable attribute bag to the context. Attributes
// added anywhere below are emitted with every record logged through
// AttributesHandler.
func ContextWithLog(ctx context.Context) context.Context {
	l := &ctxLog{
		attributes: make(map[string]any),
	}
	return context.WithValue(ctx, ctxLogKey{}, l)
}

func AddAttribute(ctx context.Context, key string, value any) {
	l, ok := ctx.Value(ctxLogKey{}).(*ctxLog)
	if !ok {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attributes[key] = value
}

func GetAttribute[T any](ctx context.Context, key string) T {
	l, ok := ctx.Value(ctxLogKey{}).(*ctxLog)
	if !ok {
		return *new(T)
	}
	l.mu.RLock()
	iVal, ok := l.attributes[key]
	l.mu.RUnlock()
	if !ok {
		return *new(T)
	}
	val, ok := iVal.(T)
	if !ok {
		return *new(T)
	}
	return val
}

func GetAttributes(ctx context.Context) map[string]any {
	l, ok := ctx.Value(ctxLogKey{}).(*ctxLog)
	if !ok {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	copied := make(map[string]any, len(l.attributes))
	for k, v := range l.attributes {
		copied[k] = v
	}
	return copied
}

const (
	ErrorAttributeKey = "error.message"
	StackAttributeKey = "error.stack"
)

func AddError(ctx context.Context, err error) {
	AddAttribute(ctx, ErrorAttributeKey, err)
}

func AddStack(ctx context.Context, stack string) {
	AddAttribute(ctx, StackAttributeKey, stack)
}
