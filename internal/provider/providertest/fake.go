// Package providertest provides a scripted Provider for tests.
package providertest

import (
	"context"
	"strings"
	"sync"

	"github.com/pep299/study-planner/internal/provider"
)

// Fake answers prompts from a script. Handler runs first when set; otherwise
// the first Rule whose Contains appears in the prompt wins, then Default.
type Fake struct {
	ID      string
	Model   string
	Handler func(prompt string) (string, error)
	Rules   []Rule
	Default Reply

	mu      sync.Mutex
	prompts []string
}

// Rule matches prompts containing a substring
type Rule struct {
	Contains string
	Reply    Reply
}

// Reply is a canned response
type Reply struct {
	Text string
	Err  error
}

// Describe implements provider.Provider
func (f *Fake) Describe() provider.Description {
	id := f.ID
	if id == "" {
		id = "fake"
	}
	return provider.Description{ProviderID: id, ModelID: f.Model}
}

// GenerateText implements provider.Provider
func (f *Fake) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", &provider.ProviderError{Provider: f.Describe().ProviderID, Message: "request timed out", Err: err}
	}
	if f.Handler != nil {
		return f.Handler(prompt)
	}
	for _, r := range f.Rules {
		if strings.Contains(prompt, r.Contains) {
			return r.Reply.Text, r.Reply.Err
		}
	}
	return f.Default.Text, f.Default.Err
}

// Prompts returns every prompt received so far
func (f *Fake) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.prompts))
	copy(out, f.prompts)
	return out
}

// Failure is a convenience ProviderError reply
func Failure(status int, message string) Reply {
	return Reply{Err: &provider.ProviderError{Provider: "fake", Status: status, Message: message}}
}
