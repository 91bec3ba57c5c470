package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/elizatalk/backend/internal/config"
	"github.com/elizatalk/backend/internal/model/chat"
)

// ErrEmptyInstruction rejects OpenChat calls without a system instruction.
var ErrEmptyInstruction = errors.New("system instruction is required")

// historyLimit caps how many prior turns are carried into each request.
const historyLimit = 10

// Client is the remote model collaborator. It owns the compiled prompt/model
// chain; conversation state lives on the Chat handles it hands out.
type Client struct {
	chain compose.Runnable[map[string]any, *schema.Message]
	cfg   config.AIConfig
}

// NewClient compiles the chat chain against the configured model provider.
func NewClient(ctx context.Context, cfg config.AIConfig) (*Client, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile chat chain: %w", err)
	}

	return &Client{chain: runnable, cfg: cfg}, nil
}

// Conversation is the send side of an open chat handle.
type Conversation interface {
	Send(ctx context.Context, text string) Reply
}

// Chat is one conversation handle. Exactly one is active per engine; opening
// a new one replaces the old without cleanup (the handle is stateless beyond
// its local history).
type Chat struct {
	client *Client
	system string

	mu      sync.Mutex
	history []*schema.Message
}

// OpenChat starts a fresh conversation under the given system instruction.
// A restored transcript may be seeded as history so the model-side context
// matches the displayed one.
func (c *Client) OpenChat(_ context.Context, systemInstruction string, history []chat.Message) (Conversation, error) {
	if strings.TrimSpace(systemInstruction) == "" {
		return nil, ErrEmptyInstruction
	}

	seeded := make([]*schema.Message, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case chat.RoleUser:
			seeded = append(seeded, schema.UserMessage(msg.Content))
		case chat.RoleModel:
			seeded = append(seeded, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return &Chat{client: c, system: systemInstruction, history: seeded}, nil
}

// Send issues one request carrying text and returns a best-effort structured
// reply. Transport failures are retried once with a short backoff, then
// mapped to a canned reply; parse trouble is repaired. Callers never see an
// error value.
func (h *Chat) Send(ctx context.Context, text string) Reply {
	h.mu.Lock()
	defer h.mu.Unlock()

	input := map[string]any{
		"system":  h.system,
		"history": h.recentHistory(),
		"query":   text,
	}

	content, err := h.client.generate(ctx, input)
	if err != nil {
		log.Printf("[ai] request failed, retrying once: %v", err)
		select {
		case <-ctx.Done():
			return classify(ctx.Err())
		case <-time.After(h.client.cfg.RetryBackoff):
		}
		content, err = h.client.generate(ctx, input)
	}
	if err != nil {
		log.Printf("[ai] request failed after retry: %v", err)
		return classify(err)
	}

	reply := ParseReply(content)
	h.history = append(h.history,
		schema.UserMessage(text),
		schema.AssistantMessage(reply.Response, nil),
	)
	return reply
}

func (h *Chat) recentHistory() []*schema.Message {
	start := 0
	if len(h.history) > historyLimit {
		start = len(h.history) - historyLimit
	}
	return append([]*schema.Message(nil), h.history[start:]...)
}

// generate runs one chain invocation under the configured timeout. The
// provider streams chunks which are concatenated before parsing.
func (c *Client) generate(ctx context.Context, input map[string]any) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	if !c.cfg.StreamResponse {
		response, err := c.chain.Invoke(ctx, input)
		if err != nil {
			return "", err
		}
		return response.Content, nil
	}

	stream, err := c.chain.Stream(ctx, input)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		if chunk != nil {
			chunks = append(chunks, chunk)
		}
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

// classify maps a transport error onto the canned reply taxonomy:
// authentication trouble, network trouble, or a generic failure.
func classify(err error) Reply {
	msg := strings.ToLower(err.Error())

	for _, token := range []string{"api key", "apikey", "unauthenticated", "unauthorized", "authentication", "invalid credential", "401", "403"} {
		if strings.Contains(msg, token) {
			return authFailureReply()
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return networkFailureReply()
	}
	for _, token := range []string{"connection", "network", "timeout", "no such host", "dial", "broken pipe", "reset by peer"} {
		if strings.Contains(msg, token) {
			return networkFailureReply()
		}
	}

	return genericFailureReply()
}
