package gateway

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// servicePrefix is prepended to a method name to build the fully-qualified
// gRPC method for Invoke/NewStream, matching the conventional
// "/package.Service/Method" form protoc-gen-go-grpc would emit.
const servicePrefix = "/dpa.gateway.v1.GatewayService/"

// Client wraps the gRPC connection to the embedding/completion backend,
// exposing the three capability-port operations spec.md §4.C names
// (embed, complete, stream_complete).
type Client struct {
	conn *grpc.ClientConn

	completionModel string
	embedModel      string
	temperature     *float32
	maxTokens       *int32

	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option customizes NewClient beyond its environment-derived defaults.
type Option func(*Client)

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRateLimit overrides the requests-per-second limiter, which defaults
// to the value of GATEWAY_RPS (or 10 rps if unset/invalid).
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// NewClient dials addr and configures the client from the environment
// (GATEWAY_COMPLETION_MODEL/GATEWAY_EMBED_MODEL/GATEWAY_TEMPERATURE/
// GATEWAY_MAX_TOKENS/GATEWAY_RPS).
func NewClient(addr string, opts ...Option) (*Client, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("gateway: dial %s: %w", addr, err)
	}

	completionModel := os.Getenv("GATEWAY_COMPLETION_MODEL")
	if completionModel == "" {
		completionModel = "default-completion"
	}
	embedModel := os.Getenv("GATEWAY_EMBED_MODEL")
	if embedModel == "" {
		embedModel = "default-embedding"
	}

	var temperature *float32
	if v := os.Getenv("GATEWAY_TEMPERATURE"); v != "" {
		if t, err := strconv.ParseFloat(v, 32); err == nil {
			t32 := float32(t)
			temperature = &t32
		}
	}
	var maxTokens *int32
	if v := os.Getenv("GATEWAY_MAX_TOKENS"); v != "" {
		if m, err := strconv.ParseInt(v, 10, 32); err == nil {
			m32 := int32(m)
			maxTokens = &m32
		}
	}

	rps := 10.0
	if v := os.Getenv("GATEWAY_RPS"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil && r > 0 {
			rps = r
		}
	}

	c := &Client{
		conn:            conn,
		completionModel: completionModel,
		embedModel:      embedModel,
		temperature:     temperature,
		maxTokens:       maxTokens,
		limiter:         rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger.Info("gateway client configured", "completion_model", completionModel, "embed_model", embedModel, "rps", rps)
	return c, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Embed implements pkg/chunker.Embedder and pkg/retriever's query-vector
// capability port: spec.md §4.C "embed" operation.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	req := &EmbedRequest{Texts: texts, Model: c.embedModel}
	resp := &EmbedResponse{}

	err := c.callWithRetry(ctx, func(ctx context.Context) error {
		return c.conn.Invoke(ctx, servicePrefix+"Embed", req, resp)
	})
	if err != nil {
		return nil, fmt.Errorf("gateway: embed: %w", err)
	}
	return resp.Vectors, nil
}

// Complete implements spec.md §4.C's non-streaming "complete" operation,
// used by pkg/analyzer's macro-summary and critique stages where a single
// final answer (not incremental tokens) is all the caller needs.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	req := &CompleteRequest{
		Messages:    messages,
		Model:       c.completionModel,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	resp := &CompleteResponse{}

	err := c.callWithRetry(ctx, func(ctx context.Context) error {
		return c.conn.Invoke(ctx, servicePrefix+"Complete", req, resp)
	})
	if err != nil {
		return "", fmt.Errorf("gateway: complete: %w", err)
	}
	return resp.Content, nil
}

// StreamComplete implements spec.md §4.C's streaming "stream_complete"
// operation over a plain message slice; session state lives in pkg/qa,
// not here.
func (c *Client) StreamComplete(ctx context.Context, messages []Message) (<-chan StreamChunk, <-chan error) {
	chunks := make(chan StreamChunk, 100)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)

		if err := c.limiter.Wait(ctx); err != nil {
			errs <- fmt.Errorf("gateway: rate limit wait: %w", err)
			return
		}

		req := &CompleteRequest{
			Messages:    messages,
			Model:       c.completionModel,
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
		}

		stream, err := c.conn.NewStream(ctx, &grpc.StreamDesc{StreamName: "StreamComplete", ServerStreams: true},
			servicePrefix+"StreamComplete")
		if err != nil {
			errs <- fmt.Errorf("gateway: open stream: %w", err)
			return
		}
		if err := stream.SendMsg(req); err != nil {
			errs <- fmt.Errorf("gateway: send stream request: %w", err)
			return
		}
		if err := stream.CloseSend(); err != nil {
			errs <- fmt.Errorf("gateway: close stream send: %w", err)
			return
		}

		for {
			var chunk StreamChunk
			if err := stream.RecvMsg(&chunk); err != nil {
				if err == io.EOF {
					return
				}
				errs <- fmt.Errorf("gateway: stream recv: %w", err)
				return
			}
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
			if chunk.IsFinal {
				return
			}
		}
	}()

	return chunks, errs
}

// callWithRetry runs fn once, and on a retryable failure (per
// ClassifyError) waits a jittered backoff and retries once.
func (c *Client) callWithRetry(ctx context.Context, fn func(context.Context) error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	err := fn(ctx)
	if err == nil {
		return nil
	}

	action := ClassifyError(err)
	if action == NoRetry {
		return err
	}

	c.logger.Warn("gateway call failed, retrying", "action", action, "error", err)

	backoff := RetryBackoffMin + time.Duration(rand.Int64N(int64(RetryBackoffMax-RetryBackoffMin)))
	select {
	case <-time.After(backoff):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if err := fn(ctx); err != nil {
		return fmt.Errorf("retry failed: %w", err)
	}
	return nil
}
