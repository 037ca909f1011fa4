package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/petasbytes/aicontext/internal/fsops"
	"github.com/petasbytes/aicontext/internal/metrics"
	"github.com/petasbytes/aicontext/internal/telemetry"
	"github.com/petasbytes/aicontext/memory"
)

// askFunc sends prompt and returns the recorded reply text.
type askFunc func(ctx context.Context, prompt string) (string, error)

// session is one REPL over a store. save persists the transcript; files
// serves /transcripts and /save.
type session struct {
	store   *memory.Store
	speaker string
	ask     askFunc
	save    func() error
	files   *fsops.Dir
	out     io.Writer
	log     zerolog.Logger
}

// bind wraps call so every exchange is recorded under rec's speaker.
func bind[A, R any](rec *memory.Recorder, extract memory.Extractor[R], call memory.Call[A, R], args A) askFunc {
	wrapped := memory.Wrap(rec, extract, call)
	return func(ctx context.Context, prompt string) (string, error) {
		resp, err := wrapped(ctx, prompt, args)
		if err != nil {
			return "", err
		}
		// Read from the response: a bound of 0 keeps nothing in the store.
		p, err := extract(resp)
		if err != nil {
			return "", err
		}
		return p.Text()
	}
}

// handle runs one input line and reports whether the REPL should stop.
func (s *session) handle(ctx context.Context, line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		s.turn(ctx, line)
		return false
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/quit", "/exit":
		return true
	case "/history":
		if t := s.store.Format(memory.Filter{Speaker: arg}); t != "" {
			fmt.Fprintln(s.out, t)
		}
	case "/latest":
		if c, ok := s.store.Latest(arg); ok {
			fmt.Fprintln(s.out, c)
		} else {
			fmt.Fprintln(s.out, "(no messages)")
		}
	case "/clear":
		before := s.store.Len()
		s.store.Clear(arg)
		fmt.Fprintf(s.out, "cleared %d message(s)\n", before-s.store.Len())
		s.persist()
	case "/export":
		doc, err := s.store.Export()
		if err != nil {
			s.log.Error().Err(err).Msg("export")
			return false
		}
		fmt.Fprintln(s.out, doc)
	case "/stats":
		s.printStats()
	case "/transcripts":
		names, err := s.files.List(arg)
		if err != nil {
			s.log.Error().Err(err).Msg("list transcripts")
			return false
		}
		for _, n := range names {
			fmt.Fprintln(s.out, n)
		}
	case "/save":
		if arg == "" {
			fmt.Fprintln(s.out, "usage: /save <name>")
			return false
		}
		if err := s.files.Save(arg, s.store); err != nil {
			s.log.Error().Err(err).Msg("save copy")
			return false
		}
		fmt.Fprintf(s.out, "saved %s\n", arg)
	default:
		fmt.Fprintf(s.out, "unknown command %s; try /history /latest /clear /export /stats /transcripts /save /quit\n", cmd)
	}
	return false
}

func (s *session) turn(ctx context.Context, prompt string) {
	ctx, turnID := telemetry.EnsureTurnID(ctx)
	reply, err := s.ask(ctx, prompt)
	if err != nil {
		s.log.Error().Err(err).Str("turn_id", turnID).Msg("ask")
	} else {
		fmt.Fprintf(s.out, "\u001b[93m%s\u001b[0m: %s\n", memory.RoleAssistant.Display(), reply)
		telemetry.EmitTurnFeatures(ctx, s.speaker, prompt, reply)
	}
	// The prompt is recorded even when the call fails.
	s.persist()
}

func (s *session) persist() {
	if err := s.save(); err != nil {
		s.log.Warn().Err(err).Msg("save transcript")
	}
}

func (s *session) printStats() {
	sum := metrics.Summarize(s.store.Entries())
	fmt.Fprintf(s.out, "messages: %d  words: %d  runes: %d\n", sum.Messages, sum.Total.Words, sum.Total.Runes)
	roles := make([]string, 0, len(sum.ByRole))
	for r := range sum.ByRole {
		roles = append(roles, string(r))
	}
	sort.Strings(roles)
	for _, r := range roles {
		f := sum.ByRole[memory.Role(r)]
		fmt.Fprintf(s.out, "  %s: words=%d runes=%d lines=%d\n", r, f.Words, f.Runes, f.Lines)
	}
}
