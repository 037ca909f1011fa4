package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/petasbytes/aicontext/internal/config"
	"github.com/petasbytes/aicontext/internal/fsops"
	"github.com/petasbytes/aicontext/internal/provider"
	"github.com/petasbytes/aicontext/internal/runner"
	"github.com/petasbytes/aicontext/memory"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default ./aictx.yaml)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log = log.Level(cfg.Level())

	s, err := newSession(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("start")
	}

	// Set up graceful shutdown on Ctrl-C (SIGINT) / SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdin reader goroutine -> lines into channel
	scanner := bufio.NewScanner(os.Stdin)
	inputCh := make(chan string)
	go func() {
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

	fmt.Printf("Chatting via %s as %q (/quit to leave)\n", cfg.Provider, cfg.Speaker)
outer:
	for {
		fmt.Print("\u001b[94mYou\u001b[0m: ")
		select {
		case <-ctx.Done():
			fmt.Println("\nExiting...")
			break outer
		case line, ok := <-inputCh:
			if !ok || s.handle(ctx, line) {
				break outer
			}
		}
	}
	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Msg("stdin read")
	}
}

// newSession loads the transcript under the data root and binds the
// configured provider to it.
func newSession(cfg *config.Config, log zerolog.Logger) (*session, error) {
	files, err := fsops.Open(cfg.DataRoot)
	if err != nil {
		return nil, err
	}
	// The transcript is rewritten every turn, so it must be writable too.
	if _, err := files.Path(cfg.Transcript); err != nil {
		return nil, err
	}

	opts := []memory.Option{memory.WithLogger(log)}
	if cfg.SystemPrompt != "" {
		opts = append(opts, memory.WithSystemPrompt(cfg.SystemPrompt))
	}
	if cfg.Bounded() {
		opts = append(opts, memory.WithMaxMessages(cfg.MaxMessages))
	}
	store, err := files.Load(cfg.Transcript, opts...)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("root", files.Root()).Str("transcript", cfg.Transcript).Int("messages", store.Len()).Msg("transcript loaded")

	ask, err := newAsk(cfg, store, log)
	if err != nil {
		return nil, err
	}
	return &session{
		store:   store,
		speaker: cfg.Speaker,
		ask:     ask,
		save:    func() error { return files.Save(cfg.Transcript, store) },
		files:   files,
		out:     os.Stdout,
		log:     log,
	}, nil
}

func newAsk(cfg *config.Config, store *memory.Store, log zerolog.Logger) (askFunc, error) {
	rec := memory.NewRecorder(store, cfg.Speaker)
	rec.Log = log
	window := runner.Window{Budget: cfg.TokenBudget}

	switch cfg.Provider {
	case config.ProviderAnthropic:
		var opts []option.RequestOption
		if cfg.APIKey != "" {
			opts = append(opts, option.WithAPIKey(cfg.APIKey))
		} else if os.Getenv("ANTHROPIC_API_KEY") == "" {
			return nil, errors.New("missing ANTHROPIC_API_KEY; export it or set api_key")
		}
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		r := &runner.Anthropic{
			Client:    provider.NewAnthropicClient(opts...),
			Model:     anthropic.Model(cfg.Model),
			MaxTokens: cfg.MaxTokens,
			Store:     store,
			Window:    window,
			Log:       log,
		}
		return bind(rec, provider.Extract[*anthropic.Message], r.Ask, runner.Options{}), nil

	case config.ProviderOpenAI:
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			return nil, errors.New("missing OPENAI_API_KEY; export it or set api_key")
		}
		r := &runner.OpenAI{
			Client:    provider.NewOpenAIClient(key, cfg.BaseURL, http.DefaultClient),
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			Store:     store,
			Window:    window,
			Log:       log,
		}
		return bind(rec, provider.Extract[openai.ChatCompletionResponse], r.Ask, runner.Options{}), nil
	}
	return nil, errors.Errorf("unknown provider %q", cfg.Provider)
}
