package command

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"tunebot/internal/storage"
	"tunebot/pkg/cmd"
)

type fakeResponder struct {
	mu      sync.Mutex
	replies []string
	embeds  []*discordgo.MessageEmbed
}

func (r *fakeResponder) Reply(content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, content)
	return nil
}

func (r *fakeResponder) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embeds = append(r.embeds, embed)
	return nil
}

type fakeHistory struct {
	records []storage.CommandHistoryRecord
	guilds  []string
}

func (h *fakeHistory) AppendCommandToHistory(guildID string, rec storage.CommandHistoryRecord) error {
	h.guilds = append(h.guilds, guildID)
	h.records = append(h.records, rec)
	return nil
}

type stubCommand struct {
	name     string
	aliases  []string
	cooldown time.Duration
	runs     int
	runFn    func(ctx context.Context, inv *cmd.Invocation) error
}

func (c *stubCommand) Name() string            { return c.name }
func (c *stubCommand) Description() string     { return "stub" }
func (c *stubCommand) Aliases() []string       { return c.aliases }
func (c *stubCommand) Cooldown() time.Duration { return c.cooldown }

func (c *stubCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	c.runs++
	if c.runFn != nil {
		return c.runFn(ctx, inv)
	}
	return nil
}

func newContext(args ...string) (*Context, *fakeResponder) {
	r := &fakeResponder{}
	return &Context{
		Source:    SourceMessage,
		GuildID:   "g1",
		GuildName: "Guild",
		ChannelID: "c1",
		UserID:    "u1",
		Username:  "user",
		Args:      args,
		Responder: r,
		Logger:    zerolog.Nop(),
	}, r
}

func TestParseMessage(t *testing.T) {
	d := NewDispatcher(cmd.NewRegistry(), "!")

	tests := []struct {
		content  string
		wantName string
		wantArgs []string
		wantOK   bool
	}{
		{"!play never gonna give you up", "play", []string{"never", "gonna", "give", "you", "up"}, true},
		{"  !P   song  ", "p", []string{"song"}, true},
		{"!skip", "skip", []string{}, true},
		{"play song", "", nil, false},
		{"!", "", nil, false},
		{"!   ", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			name, args, ok := d.ParseMessage(tt.content)
			if ok != tt.wantOK || name != tt.wantName {
				t.Fatalf("got (%q, %v), want (%q, %v)", name, ok, tt.wantName, tt.wantOK)
			}
			if strings.Join(args, "|") != strings.Join(tt.wantArgs, "|") {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestDispatch(t *testing.T) {
	reg := cmd.NewRegistry()
	play := &stubCommand{name: "play", aliases: []string{"p"}}
	reg.MustRegister(play)

	d := NewDispatcher(reg, "!")

	t.Run("alias", func(t *testing.T) {
		c, _ := newContext("song")
		play.runFn = func(ctx context.Context, inv *cmd.Invocation) error {
			got, err := FromInvocation(inv)
			if err != nil {
				return err
			}
			if got != c || inv.Args[0] != "song" {
				t.Error("command must receive the dispatch context")
			}
			return nil
		}
		if err := d.Dispatch(context.Background(), "p", c); err != nil {
			t.Fatalf("dispatch: %v", err)
		}
		if c.RequestID == "" {
			t.Error("request id must be assigned")
		}
	})

	t.Run("unknown", func(t *testing.T) {
		c, _ := newContext()
		if err := d.Dispatch(context.Background(), "dance", c); !errors.Is(err, ErrUnknownCommand) {
			t.Errorf("expected ErrUnknownCommand, got %v", err)
		}
	})
}

func TestFromInvocation(t *testing.T) {
	if _, err := FromInvocation(nil); !errors.Is(err, ErrWrongContext) {
		t.Errorf("expected ErrWrongContext for nil, got %v", err)
	}
	if _, err := FromInvocation(&cmd.Invocation{Data: "nope"}); !errors.Is(err, ErrWrongContext) {
		t.Errorf("expected ErrWrongContext for foreign data, got %v", err)
	}
}

func TestCooldowns(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := NewCooldowns()
	c.now = func() time.Time { return now }

	if ok, _ := c.Allow("u1", "play", 3*time.Second); !ok {
		t.Fatal("first run must be allowed")
	}

	now = now.Add(time.Second)
	ok, wait := c.Allow("u1", "play", 3*time.Second)
	if ok {
		t.Fatal("second run within the cooldown must be refused")
	}
	if wait <= time.Second || wait > 2*time.Second {
		t.Errorf("expected about 2s left, got %v", wait)
	}

	if ok, _ := c.Allow("u2", "play", 3*time.Second); !ok {
		t.Error("other users are not affected")
	}
	if ok, _ := c.Allow("u1", "skip", 3*time.Second); !ok {
		t.Error("other commands are not affected")
	}

	now = now.Add(2 * time.Second)
	if ok, _ := c.Allow("u1", "play", 3*time.Second); !ok {
		t.Error("run after the cooldown must be allowed")
	}

	if ok, _ := c.Allow("u1", "help", 0); !ok {
		t.Error("commands without cooldown are always allowed")
	}

	now = now.Add(time.Hour)
	if n := c.Sweep(10 * time.Minute); n != 3 {
		t.Errorf("expected 3 idle entries swept, got %d", n)
	}
	if c.Len() != 0 {
		t.Errorf("expected no entries left, got %d", c.Len())
	}
}

func TestMiddlewares(t *testing.T) {
	t.Run("guild only", func(t *testing.T) {
		stub := &stubCommand{name: "play"}
		c, r := newContext()
		c.GuildID = ""

		wrapped := cmd.Apply(stub, WithGuildOnly())
		if err := wrapped.Run(context.Background(), &cmd.Invocation{Data: c}); err != nil {
			t.Fatalf("run: %v", err)
		}
		if stub.runs != 0 {
			t.Error("command must not run in DMs")
		}
		if len(r.replies) != 1 || r.replies[0] != MsgGuildOnly {
			t.Errorf("unexpected replies %v", r.replies)
		}
	})

	t.Run("cooldown", func(t *testing.T) {
		stub := &stubCommand{name: "play", cooldown: time.Minute}
		wrapped := cmd.Apply(stub, WithCooldown(NewCooldowns()))

		c, r := newContext()
		for i := 0; i < 2; i++ {
			if err := wrapped.Run(context.Background(), &cmd.Invocation{Data: c}); err != nil {
				t.Fatalf("run: %v", err)
			}
		}
		if stub.runs != 1 {
			t.Errorf("expected one run, got %d", stub.runs)
		}
		if len(r.replies) != 1 || !strings.Contains(r.replies[0], "`play`") {
			t.Errorf("expected cooldown reply, got %v", r.replies)
		}
	})

	t.Run("recover", func(t *testing.T) {
		stub := &stubCommand{name: "play", runFn: func(ctx context.Context, inv *cmd.Invocation) error {
			panic("boom")
		}}
		c, r := newContext()

		err := cmd.Apply(stub, WithRecover()).Run(context.Background(), &cmd.Invocation{Data: c})
		if !errors.Is(err, ErrPanic) {
			t.Errorf("expected ErrPanic, got %v", err)
		}
		if len(r.replies) != 1 || r.replies[0] != MsgInternalError {
			t.Errorf("expected generic error reply, got %v", r.replies)
		}
	})

	t.Run("command logger", func(t *testing.T) {
		wantErr := errors.New("failed")
		stub := &stubCommand{name: "play", runFn: func(ctx context.Context, inv *cmd.Invocation) error {
			return wantErr
		}}
		history := &fakeHistory{}
		c, _ := newContext("some", "song")

		err := cmd.Apply(stub, WithCommandLogger(history)).Run(context.Background(), &cmd.Invocation{Data: c})
		if !errors.Is(err, wantErr) {
			t.Errorf("command error must pass through, got %v", err)
		}
		if len(history.records) != 1 {
			t.Fatalf("expected one history record, got %d", len(history.records))
		}
		rec := history.records[0]
		if history.guilds[0] != "g1" || rec.Command != "play" || rec.Param != "some song" || rec.UserID != "u1" {
			t.Errorf("unexpected record %+v", rec)
		}
	})
}
