package testtypes

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

var (
	TypeLogger        = reflect.TypeFor[Logger]()
	TypeConsoleLogger = reflect.TypeFor[*ConsoleLogger]()

	TypeCache       = reflect.TypeFor[Cache]()
	TypeMemoryCache = reflect.TypeFor[*MemoryCache]()
	TypeNullCache   = reflect.TypeFor[*NullCache]()

	TypeNotifier = reflect.TypeFor[Notifier]()
	TypeStore    = reflect.TypeFor[Store]()
)

// Logger writes messages somewhere.
type Logger interface {
	Log(msg string) string
}

// ConsoleLogger formats messages with a prefix and remembers them.
type ConsoleLogger struct {
	Prefix string

	mu    sync.Mutex
	lines []string
}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{Prefix: "console"}
}

func (l *ConsoleLogger) Log(msg string) string {
	line := fmt.Sprintf("%s: %s", l.Prefix, msg)

	l.mu.Lock()
	l.lines = append(l.lines, line)
	l.mu.Unlock()

	return line
}

func (l *ConsoleLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.lines...)
}

// LoggerProxy forwards every call to the embedded Logger.
type LoggerProxy struct {
	Logger
}

func NewLoggerProxy(inner Logger) Logger {
	return &LoggerProxy{Logger: inner}
}

// Cache stores strings by key.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, val string)
}

type MemoryCache struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{m: make(map[string]string)}
}

func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.m[key]
	return v, ok
}

func (c *MemoryCache) Set(key, val string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.m[key] = val
}

// NullCache never stores anything. It counts lookups so instances have a size.
type NullCache struct {
	Misses int
}

func (c *NullCache) Get(string) (string, bool) {
	c.Misses++
	return "", false
}

func (*NullCache) Set(string, string) {}

func (*NullCache) IsNullService() bool { return true }

// Notifier sends a notification over some channel.
type Notifier interface {
	Notify(msg string) string
}

type EmailNotifier struct{ Logger Logger }

func NewEmailNotifier(l Logger) *EmailNotifier { return &EmailNotifier{Logger: l} }

func (n *EmailNotifier) Notify(msg string) string { return "email: " + msg }

type SMSNotifier struct{}

func NewSMSNotifier() *SMSNotifier { return &SMSNotifier{} }

func (*SMSNotifier) Notify(msg string) string { return "sms: " + msg }

type PushNotifier struct{ Topic string }

func (n PushNotifier) Notify(msg string) string { return "push " + n.Topic + ": " + msg }

// Store is a resource that must be closed.
type Store interface {
	Get(key string) (string, error)
	Close(ctx context.Context) error
}

// Counter counts how many times constructors are called.
type Counter struct {
	mu    sync.Mutex
	calls int
}

func (c *Counter) Inc() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func (c *Counter) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.calls
}
