package services

import (
	"context"

	"github.com/codeready-toolchain/dpa/pkg/analyzer"
	"github.com/codeready-toolchain/dpa/pkg/gateway"
	"github.com/codeready-toolchain/dpa/pkg/qa"
)

// GatewayAdapter narrows *gateway.Client to the decoupled Message types
// pkg/analyzer and pkg/qa each define for themselves (see their ports.go
// "kept as a tiny local type" convention), so neither package needs to
// import pkg/gateway directly.
type GatewayAdapter struct {
	Client *gateway.Client
}

// NewGatewayAdapter returns a GatewayAdapter.
func NewGatewayAdapter(client *gateway.Client) *GatewayAdapter {
	return &GatewayAdapter{Client: client}
}

// Embed satisfies gatewayEmbedder / pkg/chunker's and pkg/retriever's
// Embedder ports directly — *gateway.Client.Embed already has the right
// shape, so this just forwards.
func (a *GatewayAdapter) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return a.Client.Embed(ctx, texts)
}

// Complete satisfies analyzer.Completer.
func (a *GatewayAdapter) Complete(ctx context.Context, messages []analyzer.Message) (string, error) {
	return a.Client.Complete(ctx, toGatewayMessages(messages))
}

// CompleteQA satisfies qa.Completer. Named distinctly from Complete since
// Go methods can't be overloaded on parameter type alone.
func (a *GatewayAdapter) CompleteQA(ctx context.Context, messages []qa.Message) (string, error) {
	out := make([]gateway.Message, len(messages))
	for i, m := range messages {
		out[i] = gateway.Message{Role: gateway.Role(m.Role), Content: m.Content}
	}
	return a.Client.Complete(ctx, out)
}

func toGatewayMessages(messages []analyzer.Message) []gateway.Message {
	out := make([]gateway.Message, len(messages))
	for i, m := range messages {
		out[i] = gateway.Message{Role: gateway.Role(m.Role), Content: m.Content}
	}
	return out
}

// qaCompleterAdapter adapts GatewayAdapter.CompleteQA to qa.Completer's
// single-method Complete signature without colliding with
// analyzer.Completer's identically named but differently typed method on
// the same GatewayAdapter value.
type qaCompleterAdapter struct {
	gw *GatewayAdapter
}

// NewQACompleter returns a qa.Completer backed by gw.
func NewQACompleter(gw *GatewayAdapter) qa.Completer {
	return qaCompleterAdapter{gw: gw}
}

func (a qaCompleterAdapter) Complete(ctx context.Context, messages []qa.Message) (string, error) {
	return a.gw.CompleteQA(ctx, messages)
}

var (
	_ analyzer.Completer = (*GatewayAdapter)(nil)
	_ gatewayEmbedder     = (*GatewayAdapter)(nil)
	_ qa.Completer        = qaCompleterAdapter{}
)
