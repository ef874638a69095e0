package discord

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"tunebot/internal/command/music"
	"tunebot/internal/music/queue"
	"tunebot/internal/music/track"
	"tunebot/internal/storage"
	"tunebot/pkg/cmd"
)

type sentMessage struct {
	channelID string
	content   string
	embed     *discordgo.MessageEmbed
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSender) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{channelID: channelID, content: content})
	return &discordgo.Message{}, f.err
}

func (f *fakeSender) ChannelMessageSendEmbed(channelID string, e *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{channelID: channelID, embed: e})
	return &discordgo.Message{}, f.err
}

func TestNotifier(t *testing.T) {
	tr := track.Track{Title: "Song", URL: "https://youtu.be/x", Duration: "3:00", RequestedBy: "bob"}

	t.Run("now playing sends an embed", func(t *testing.T) {
		s := &fakeSender{}
		n := newNotifier(s)
		n.NowPlaying("text", tr)

		if len(s.sent) != 1 {
			t.Fatalf("expected one message, got %d", len(s.sent))
		}
		got := s.sent[0]
		if got.channelID != "text" || got.embed == nil {
			t.Fatalf("unexpected message %+v", got)
		}
		if got.embed.Title != music.TitleNowPlaying {
			t.Errorf("title = %q", got.embed.Title)
		}
	})

	t.Run("playback failure names the track", func(t *testing.T) {
		s := &fakeSender{}
		n := newNotifier(s)
		n.PlaybackFailed("text", tr, queue.ErrStreamAcquisition)

		if len(s.sent) != 1 {
			t.Fatalf("expected one message, got %d", len(s.sent))
		}
		content := s.sent[0].content
		if !strings.Contains(content, music.MsgPlaybackError) || !strings.Contains(content, "Song") {
			t.Errorf("content = %q", content)
		}
	})

	t.Run("mid-track failure is a playback error", func(t *testing.T) {
		s := &fakeSender{}
		n := newNotifier(s)
		n.PlaybackFailed("text", tr, fmt.Errorf("%w: read pcm: connection reset", queue.ErrPlaybackFailed))

		if len(s.sent) != 1 {
			t.Fatalf("expected one message, got %d", len(s.sent))
		}
		content := s.sent[0].content
		if !strings.HasPrefix(content, music.MsgPlaybackError) {
			t.Errorf("content = %q", content)
		}
	})

	t.Run("send errors are swallowed", func(t *testing.T) {
		s := &fakeSender{err: errors.New("discord down")}
		n := newNotifier(s)
		n.NowPlaying("text", tr)
		n.PlaybackFailed("text", tr, queue.ErrStreamAcquisition)
		if len(s.sent) != 2 {
			t.Errorf("expected two attempts, got %d", len(s.sent))
		}
	})
}

type fakeSettingsStore struct {
	volumes   map[string]int
	volumeErr error
	history   []storage.TrackHistoryRecord
}

func (f *fakeSettingsStore) Volume(guildID string, fallback int) (int, error) {
	if f.volumeErr != nil {
		return 0, f.volumeErr
	}
	if v, ok := f.volumes[guildID]; ok {
		return v, nil
	}
	return fallback, nil
}

func (f *fakeSettingsStore) SetVolume(guildID string, v int) error {
	f.volumes[guildID] = v
	return nil
}

func (f *fakeSettingsStore) AppendTrackToHistory(_ string, rec storage.TrackHistoryRecord) error {
	f.history = append(f.history, rec)
	return nil
}

func TestGuildSettings(t *testing.T) {
	store := &fakeSettingsStore{volumes: map[string]int{"g1": 30}}
	s := newGuildSettings(store, 50)

	if v := s.Volume("g1"); v != 30 {
		t.Errorf("stored volume = %d, want 30", v)
	}
	if v := s.Volume("g2"); v != 50 {
		t.Errorf("default volume = %d, want 50", v)
	}

	if err := s.SaveVolume("g2", 80); err != nil {
		t.Fatalf("SaveVolume: %v", err)
	}
	if v := s.Volume("g2"); v != 80 {
		t.Errorf("saved volume = %d, want 80", v)
	}

	store.volumeErr = errors.New("corrupt")
	if v := s.Volume("g1"); v != 50 {
		t.Errorf("volume on error = %d, want default", v)
	}

	s.TrackStarted("g1", track.Track{Title: "Song", URL: "u", RequestedBy: "bob"})
	if len(store.history) != 1 {
		t.Fatalf("history length = %d", len(store.history))
	}
	rec := store.history[0]
	if rec.Title != "Song" || rec.RequestedBy != "bob" || rec.PlayedAt.IsZero() {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestHashCommand(t *testing.T) {
	minVal := 0.0
	base := func() *discordgo.ApplicationCommand {
		return &discordgo.ApplicationCommand{
			ID:          "1",
			Version:     "1",
			Name:        "volume",
			Description: "desc",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "level", Description: "l", MinValue: &minVal, MaxValue: 100},
				{Type: discordgo.ApplicationCommandOptionString, Name: "extra", Description: "e"},
			},
		}
	}

	a := base()
	b := base()
	b.ID, b.Version = "2", "7"
	b.Options[0], b.Options[1] = b.Options[1], b.Options[0]
	if hashCommand(a) != hashCommand(b) {
		t.Error("hash should ignore IDs, versions and option order")
	}

	c := base()
	c.Options[0].MaxValue = 200
	if hashCommand(a) == hashCommand(c) {
		t.Error("hash should change with option bounds")
	}

	d := base()
	d.Description = "other"
	if hashCommand(a) == hashCommand(d) {
		t.Error("hash should change with description")
	}
}

type fakeSlashAPI struct {
	remote  []*discordgo.ApplicationCommand
	created []string
	deleted []string
	failOn  string
}

func (f *fakeSlashAPI) ApplicationCommands(_, _ string, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	return f.remote, nil
}

func (f *fakeSlashAPI) ApplicationCommandCreate(_, _ string, c *discordgo.ApplicationCommand, _ ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	if c.Name == f.failOn {
		return nil, errors.New("rate limited")
	}
	f.created = append(f.created, c.Name)
	return c, nil
}

func (f *fakeSlashAPI) ApplicationCommandDelete(_, _, id string, _ ...discordgo.RequestOption) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type memHashes struct {
	byGuild map[string]map[string]string
}

func (m *memHashes) SlashHashes(guildID string) (map[string]string, error) {
	return maps.Clone(m.byGuild[guildID]), nil
}

func (m *memHashes) SetSlashHashes(guildID string, h map[string]string) error {
	m.byGuild[guildID] = maps.Clone(h)
	return nil
}

func TestSlashSync(t *testing.T) {
	play := &discordgo.ApplicationCommand{Name: "play", Description: "p", Type: discordgo.ChatApplicationCommand}
	skip := &discordgo.ApplicationCommand{Name: "skip", Description: "s", Type: discordgo.ChatApplicationCommand}
	local := []*discordgo.ApplicationCommand{play, skip}

	t.Run("first sync registers everything and drops obsolete", func(t *testing.T) {
		api := &fakeSlashAPI{remote: []*discordgo.ApplicationCommand{{ID: "old", Name: "purge"}}}
		hashes := &memHashes{byGuild: map[string]map[string]string{}}
		s := slashSyncer{api: api, hashes: hashes, logger: zerolog.Nop()}

		if err := s.sync("app", "g", local); err != nil {
			t.Fatalf("sync: %v", err)
		}
		if len(api.created) != 2 {
			t.Errorf("created = %v", api.created)
		}
		if len(api.deleted) != 1 || api.deleted[0] != "old" {
			t.Errorf("deleted = %v", api.deleted)
		}
		if len(hashes.byGuild["g"]) != 2 {
			t.Errorf("stored hashes = %v", hashes.byGuild["g"])
		}
	})

	t.Run("unchanged commands are skipped", func(t *testing.T) {
		api := &fakeSlashAPI{remote: []*discordgo.ApplicationCommand{{ID: "1", Name: "play"}, {ID: "2", Name: "skip"}}}
		hashes := &memHashes{byGuild: map[string]map[string]string{
			"g": {"play": hashCommand(play), "skip": "stale"},
		}}
		s := slashSyncer{api: api, hashes: hashes, logger: zerolog.Nop()}

		if err := s.sync("app", "g", local); err != nil {
			t.Fatalf("sync: %v", err)
		}
		if len(api.created) != 1 || api.created[0] != "skip" {
			t.Errorf("created = %v", api.created)
		}
		if hashes.byGuild["g"]["skip"] != hashCommand(skip) {
			t.Error("skip hash should be refreshed")
		}
	})

	t.Run("a cached hash without a remote command re-registers", func(t *testing.T) {
		api := &fakeSlashAPI{}
		hashes := &memHashes{byGuild: map[string]map[string]string{
			"g": {"play": hashCommand(play), "skip": hashCommand(skip)},
		}}
		s := slashSyncer{api: api, hashes: hashes, logger: zerolog.Nop()}

		if err := s.sync("app", "g", local); err != nil {
			t.Fatalf("sync: %v", err)
		}
		if len(api.created) != 2 {
			t.Errorf("created = %v", api.created)
		}
	})

	t.Run("failed registration is retried next time", func(t *testing.T) {
		api := &fakeSlashAPI{failOn: "skip"}
		hashes := &memHashes{byGuild: map[string]map[string]string{}}
		s := slashSyncer{api: api, hashes: hashes, logger: zerolog.Nop()}

		if err := s.sync("app", "g", local); err != nil {
			t.Fatalf("sync: %v", err)
		}
		if _, ok := hashes.byGuild["g"]["skip"]; ok {
			t.Error("failed command must not be cached")
		}
	})
}

func TestSlashDefinitions(t *testing.T) {
	r := cmd.NewRegistry()
	r.MustRegister(music.Commands(nil, nil)...)

	defs := slashDefinitions(r)
	if len(defs) != len(r.GetAll()) {
		t.Fatalf("got %d definitions for %d commands", len(defs), len(r.GetAll()))
	}
	for _, d := range defs {
		if d.Type != discordgo.ChatApplicationCommand {
			t.Errorf("%s: type = %v", d.Name, d.Type)
		}
	}
}

func TestOptionArgs(t *testing.T) {
	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "query", Type: discordgo.ApplicationCommandOptionString, Value: "never gonna  give"},
		{Name: "level", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(40)},
	}
	got := optionArgs(opts)
	want := []string{"never", "gonna", "give", "40"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("optionArgs = %q, want %q", got, want)
	}
}

func TestHasVoicePermissions(t *testing.T) {
	tests := []struct {
		name  string
		perms int64
		want  bool
	}{
		{"connect and speak", discordgo.PermissionVoiceConnect | discordgo.PermissionVoiceSpeak, true},
		{"connect only", discordgo.PermissionVoiceConnect, false},
		{"speak only", discordgo.PermissionVoiceSpeak, false},
		{"administrator", discordgo.PermissionAdministrator, true},
		{"nothing", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasVoicePermissions(tt.perms); got != tt.want {
				t.Errorf("hasVoicePermissions(%d) = %v, want %v", tt.perms, got, tt.want)
			}
		})
	}
}

func TestInteractionUser(t *testing.T) {
	member := &discordgo.User{ID: "m"}
	direct := &discordgo.User{ID: "d"}

	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{Member: &discordgo.Member{User: member}, User: direct}}
	if got := interactionUser(i); got != member {
		t.Errorf("guild interaction should use member user")
	}

	i = &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{User: direct}}
	if got := interactionUser(i); got != direct {
		t.Errorf("DM interaction should use user")
	}
}
