package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"restaurant_chat/src/conversation"
	"restaurant_chat/src/llm"
	"restaurant_chat/src/logger"
	"restaurant_chat/src/message"
	"restaurant_chat/src/model"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

var (
	// ErrNoToolCall marks a forced step whose response carried no tool call
	ErrNoToolCall = errors.New("model response has no tool call")
	// ErrNoMessages is returned when a turn has nothing to answer
	ErrNoMessages = errors.New("no messages to answer")
)

const toolErrorPrefix = "Error fetching API data: "

// Options tunes one Agent
type Options struct {
	BatchWindow      time.Duration
	BatchFallback    time.Duration
	MaxMessageLength int
	ToolCallLimit    int
	MaxRetries       uint64
	MaxSteps         int
}

// OptionsFromConfig maps the chat section of the service config
func OptionsFromConfig(config model.ChatConfig) Options {
	return Options{
		BatchWindow:      config.BatchWindow,
		BatchFallback:    config.BatchFallback,
		MaxMessageLength: config.MaxMessageLength,
		ToolCallLimit:    config.ToolCallLimit,
		MaxRetries:       config.MaxRetries,
		MaxSteps:         config.MaxSteps,
	}
}

func (o Options) withDefaults() Options {
	if o.BatchWindow <= 0 {
		o.BatchWindow = conversation.DefaultBatchWindow
	}
	if o.MaxMessageLength <= 0 {
		o.MaxMessageLength = message.DefaultMaxLength
	}
	if o.ToolCallLimit <= 0 {
		o.ToolCallLimit = 2
	}
	if o.MaxSteps <= 0 {
		o.MaxSteps = 5
	}
	return o
}

// Agent runs the tool invocation loop for one user turn at a time
type Agent struct {
	chatModel  einomodel.ToolCallingChatModel
	tools      map[string]tool.InvokableTool
	template   prompt.ChatTemplate
	memory     *conversation.Memory
	batcher    *conversation.Batcher
	opts       Options
	now        func() time.Time
	newBackOff func() backoff.BackOff
}

// New binds tools to chatModel and returns a ready Agent
func New(ctx context.Context, chatModel einomodel.ToolCallingChatModel, tools []tool.InvokableTool,
	memory *conversation.Memory, batcher *conversation.Batcher, opts Options) (*Agent, error) {

	infos := make([]*schema.ToolInfo, 0, len(tools))
	byName := make(map[string]tool.InvokableTool, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("error reading tool info: %w", err)
		}
		infos = append(infos, info)
		byName[info.Name] = t
	}

	bound, err := chatModel.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("error binding tools to chat model: %w", err)
	}

	return &Agent{
		chatModel:  bound,
		tools:      byName,
		template:   llm.NewChatTemplate(),
		memory:     memory,
		batcher:    batcher,
		opts:       opts.withDefaults(),
		now:        time.Now,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}, nil
}

// Memory exposes the conversation store the agent writes to
func (a *Agent) Memory() *conversation.Memory {
	return a.memory
}

// Turn is the live answer to one request
type Turn struct {
	ConversationID string
	// Stream yields text deltas. It is single pass and must be closed.
	Stream *schema.StreamReader[string]
	// Absorbed is set when the message was merged into another request's batch
	Absorbed bool

	save func(string)
	once sync.Once
}

// SaveResponse records the assistant's full reply in memory. Only the first
// non-empty call has an effect.
func (t *Turn) SaveResponse(text string) {
	if t.save == nil || strings.TrimSpace(text) == "" {
		return
	}
	t.once.Do(func() { t.save(text) })
}

// Start batches the latest message, runs the forced tool step and returns
// a turn whose stream carries the rest of the generation. Errors returned
// here happen before any output exists.
func (a *Agent) Start(ctx context.Context, messages []model.Message) (*Turn, error) {
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	key := conversation.Key(messages)
	log := logger.Component("agent").With().Str("conversation_id", key).Logger()
	prior := a.memory.Read(key)

	// Only user messages are batched and remembered
	processed := messages
	if last := messages[len(messages)-1]; last.Role == model.RoleUser {
		ticket := a.batcher.Submit(key, last, a.opts.BatchWindow)
		batch, err := ticket.Wait(ctx, a.opts.BatchFallback)
		if err != nil {
			return nil, fmt.Errorf("error waiting for message batch: %w", err)
		}

		if !ticket.Owner() {
			log.Info().Msg("message absorbed into pending batch")
			return &Turn{
				ConversationID: key,
				Stream:         schema.StreamReaderFromArray([]string{}),
				Absorbed:       true,
			}, nil
		}

		combined := conversation.Combine(batch)
		a.memory.Append(key, combined)
		if len(batch) > 1 {
			log.Info().Int("batched", len(batch)).Msg("merged consecutive messages")
		}
		processed = append(append([]model.Message{}, messages[:len(messages)-1]...), combined)
	} else {
		log.Debug().Str("role", string(last.Role)).Msg("last message is not from the user, skipping batch")
	}
	processed = message.SegmentAll(processed, a.opts.MaxMessageLength)

	input, err := llm.BuildMessages(ctx, a.template, message.Separator, a.now(), prior, processed)
	if err != nil {
		return nil, err
	}

	first, err := a.forcedStep(ctx, input)
	if err != nil {
		return nil, err
	}

	reader, writer := schema.Pipe[string](16)
	go a.run(ctx, key, input, first, writer)

	return &Turn{
		ConversationID: key,
		Stream:         reader,
		save: func(text string) {
			a.memory.Append(key, model.AssistantMessage(text))
		},
	}, nil
}

// Complete runs a turn to the end and saves the reply
func (a *Agent) Complete(ctx context.Context, messages []model.Message) (model.CompletionResult, error) {
	turn, err := a.Start(ctx, messages)
	if err != nil {
		return model.CompletionResult{}, err
	}

	text, err := Drain(turn.Stream)
	if err != nil {
		return model.CompletionResult{}, err
	}
	turn.SaveResponse(text)

	return model.CompletionResult{
		ConversationID: turn.ConversationID,
		Response:       text,
		Parts:          message.Divide(text),
	}, nil
}

// Drain reads a stream to the end, closes it and returns the joined text
func Drain(stream *schema.StreamReader[string]) (string, error) {
	defer stream.Close()

	var sb strings.Builder
	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(delta)
	}
}

// forcedStep asks for a tool selection, retrying within the budget
func (a *Agent) forcedStep(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
	var (
		result  *schema.Message
		attempt int
	)

	operation := func() error {
		attempt++
		msg, err := a.chatModel.Generate(ctx, input, einomodel.WithToolChoice(schema.ToolChoiceForced))
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}
		if len(msg.ToolCalls) == 0 {
			return ErrNoToolCall
		}
		result = msg
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("forced tool step failed")
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(a.newBackOff(), a.opts.MaxRetries), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, fmt.Errorf("error generating tool selection after %d attempts: %w", attempt, err)
	}
	return result, nil
}

// run executes tool calls and streams follow-up steps until the model stops
// calling tools or the cumulative call count passes the limit.
func (a *Agent) run(ctx context.Context, key string, history []*schema.Message, msg *schema.Message, writer *schema.StreamWriter[string]) {
	defer writer.Close()
	log := logger.Component("agent").With().Str("conversation_id", key).Logger()

	if msg.Content != "" {
		if closed := writer.Send(msg.Content, nil); closed {
			return
		}
	}

	calls := 0
	for step := 1; len(msg.ToolCalls) > 0; step++ {
		calls += len(msg.ToolCalls)
		history = append(history, msg)
		history = append(history, a.executeTools(ctx, msg.ToolCalls)...)

		if calls > a.opts.ToolCallLimit {
			log.Info().Int("tool_calls", calls).Msg("tool call limit reached")
			return
		}
		if step >= a.opts.MaxSteps {
			log.Info().Int("steps", step).Msg("step limit reached")
			return
		}

		next, err := a.streamStep(ctx, history, writer)
		if err != nil {
			log.Error().Err(err).Int("step", step).Msg("model stream failed")
			writer.Send("", err)
			return
		}
		if next == nil {
			return
		}
		msg = next
	}

	log.Debug().Int("tool_calls", calls).Msg("turn finished")
}

// streamStep forwards text deltas of one model step and returns the
// assembled message. A nil message means the reader went away.
func (a *Agent) streamStep(ctx context.Context, history []*schema.Message, writer *schema.StreamWriter[string]) (*schema.Message, error) {
	reader, err := a.chatModel.Stream(ctx, history, einomodel.WithToolChoice(schema.ToolChoiceAllowed))
	if err != nil {
		return nil, fmt.Errorf("error starting model stream: %w", err)
	}
	defer reader.Close()

	var chunks []*schema.Message
	for {
		chunk, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error receiving model stream: %w", err)
		}
		if chunk == nil {
			continue
		}
		if chunk.Content != "" {
			if closed := writer.Send(chunk.Content, nil); closed {
				return nil, nil
			}
		}
		chunks = append(chunks, chunk)
	}

	if len(chunks) == 0 {
		return &schema.Message{Role: schema.Assistant}, nil
	}
	msg, err := schema.ConcatMessages(chunks)
	if err != nil {
		return nil, fmt.Errorf("error concatenating model stream: %w", err)
	}
	return msg, nil
}

func (a *Agent) executeTools(ctx context.Context, calls []schema.ToolCall) []*schema.Message {
	results := make([]*schema.Message, 0, len(calls))
	for _, call := range calls {
		results = append(results, schema.ToolMessage(a.invoke(ctx, call), call.ID))
	}
	return results
}

func (a *Agent) invoke(ctx context.Context, call schema.ToolCall) string {
	t, ok := a.tools[call.Function.Name]
	if !ok {
		logger.Warn().Str("tool", call.Function.Name).Msg("model called unknown tool")
		return toolErrorPrefix + fmt.Sprintf("unknown tool %q", call.Function.Name)
	}

	output, err := t.InvokableRun(ctx, call.Function.Arguments)
	if err != nil {
		logger.Error().Err(err).Str("tool", call.Function.Name).Msg("tool execution failed")
		return toolErrorPrefix + err.Error()
	}
	return output
}
