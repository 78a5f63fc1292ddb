// Package status implements the tagged state shared by checks and
// contexts: a fixed set of codes, an append-only message log, and a
// synchronous "updated" signal for observers (a UI progress panel, a
// log sink) to subscribe to.
package status

import (
	"strings"
	"sync"

	"github.com/sanitycheck/engine/internal/apperror"
)

// CheckCode is the state of a single Check.
type CheckCode int

const (
	NotRan CheckCode = iota
	Running
	Passed
	NotPassed
	Failed
	Cancelled
)

var checkCodeNames = map[CheckCode]string{
	NotRan:     "not_ran",
	Running:    "running",
	Passed:     "passed",
	NotPassed:  "not_passed",
	Failed:     "failed",
	Cancelled:  "cancelled",
}

func (c CheckCode) String() string {
	if s, ok := checkCodeNames[c]; ok {
		return s
	}
	return "unknown"
}

func (c CheckCode) valid() bool {
	_, ok := checkCodeNames[c]
	return ok
}

// ContextCode is the state of a single Context.
type ContextCode int

const (
	NotReady ContextCode = iota
	Ready
	ContextFailed
	ContextCancelled
	Finished
)

var contextCodeNames = map[ContextCode]string{
	NotReady:         "not_ready",
	Ready:            "ready",
	ContextFailed:    "failed",
	ContextCancelled: "cancelled",
	Finished:         "finished",
}

func (c ContextCode) String() string {
	if s, ok := contextCodeNames[c]; ok {
		return s
	}
	return "unknown"
}

func (c ContextCode) valid() bool {
	_, ok := contextCodeNames[c]
	return ok
}

// CheckStatus is the observable state of a Check.
//
// Zero value is not usable; construct with NewCheckStatus.
type CheckStatus struct {
	mu        sync.Mutex
	code      CheckCode
	messages  []string
	observers []func()
}

// NewCheckStatus returns a CheckStatus initialized to NotRan.
func NewCheckStatus() *CheckStatus {
	return &CheckStatus{code: NotRan}
}

// Code returns the current code.
func (s *CheckStatus) Code() CheckCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

// SetCode sets the code, firing the updated signal. Returns an
// ImplementationError if code is not one of the six tags.
func (s *CheckStatus) SetCode(code CheckCode) error {
	if !code.valid() {
		return apperror.Implementationf("invalid status code: %v", code)
	}
	s.mu.Lock()
	s.code = code
	subs := append([]func(){}, s.observers...)
	s.mu.Unlock()
	notify(subs)
	return nil
}

// AddMessage appends a message and fires the updated signal. The
// message list never shrinks.
func (s *CheckStatus) AddMessage(msg string) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	subs := append([]func(){}, s.observers...)
	s.mu.Unlock()
	notify(subs)
}

// Message returns the concatenation of every appended message,
// newline-separated.
func (s *CheckStatus) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.messages, "\n")
}

// Len returns the number of appended messages.
func (s *CheckStatus) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Subscribe registers fn to be called, synchronously, after every
// SetCode/AddMessage. The caller MUST NOT block inside fn.
func (s *CheckStatus) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Equal compares codes only, per spec.
func (s *CheckStatus) Equal(other *CheckStatus) bool {
	return s.Code() == other.Code()
}

func (s *CheckStatus) String() string {
	return s.Code().String()
}

// ContextStatus is the observable state of a Context.
type ContextStatus struct {
	mu        sync.Mutex
	code      ContextCode
	messages  []string
	observers []func()
}

// NewContextStatus returns a ContextStatus initialized to NotReady.
func NewContextStatus() *ContextStatus {
	return &ContextStatus{code: NotReady}
}

func (s *ContextStatus) Code() ContextCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

// SetCode sets the code, firing the updated signal. Returns an
// ImplementationError if code is not one of the five tags.
func (s *ContextStatus) SetCode(code ContextCode) error {
	if !code.valid() {
		return apperror.Implementationf("invalid status code: %v", code)
	}
	s.mu.Lock()
	s.code = code
	subs := append([]func(){}, s.observers...)
	s.mu.Unlock()
	notify(subs)
	return nil
}

func (s *ContextStatus) AddMessage(msg string) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	subs := append([]func(){}, s.observers...)
	s.mu.Unlock()
	notify(subs)
}

func (s *ContextStatus) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.messages, "\n")
}

func (s *ContextStatus) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *ContextStatus) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *ContextStatus) Equal(other *ContextStatus) bool {
	return s.Code() == other.Code()
}

func (s *ContextStatus) String() string {
	return s.Code().String()
}

// notify dispatches synchronously and never blocks the mutator on a
// panicking subscriber.
func notify(subs []func()) {
	for _, fn := range subs {
		func() {
			defer func() { recover() }()
			fn()
		}()
	}
}
