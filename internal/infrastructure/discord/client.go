package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/guild-verify/internal/domain"
)

// api is the subset of *discordgo.Session the client calls.
type api interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Client is the guild collaborator: it resolves members, grants roles and
// sends direct messages through a bot account.
type Client struct {
	session *discordgo.Session
	api     api
	guildID string
	state   readiness
	log     *slog.Logger
}

// New builds a client for botToken scoped to guildID. Call Open to connect.
func New(botToken, guildID string, log *slog.Logger) (*Client, error) {
	s, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsDirectMessages

	c := newClient(s, guildID, log)
	c.session = s
	s.AddHandler(c.onReady)
	s.AddHandler(c.onResumed)
	s.AddHandler(c.onDisconnect)
	return c, nil
}

func newClient(a api, guildID string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{api: a, guildID: guildID, log: log}
}

// Open starts the gateway connection. The client becomes ready once the
// gateway sends its Ready event.
func (c *Client) Open() error {
	if err := c.session.Open(); err != nil {
		c.state.set(StateDisconnected)
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	c.state.set(StateDisconnected)
	return c.session.Close()
}

// State returns the current connection state.
func (c *Client) State() State { return c.state.get() }

// StateName is State as text, for health reporting.
func (c *Client) StateName() string { return c.state.get().String() }

// Ready reports whether the gateway connection is established.
func (c *Client) Ready() bool { return c.state.get() == StateReady }

func (c *Client) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	c.state.set(StateReady)
	name := ""
	if r.User != nil {
		name = r.User.Username
	}
	c.log.Info("discord bot connected", "user", name, "guilds", len(r.Guilds))
}

func (c *Client) onResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	if prev := c.state.set(StateReady); prev != StateReady {
		c.log.Info("discord gateway resumed")
	}
}

func (c *Client) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	if prev := c.state.set(StateDisconnected); prev == StateReady {
		c.log.Warn("discord gateway disconnected")
	}
}

// FetchAccount returns the guild member with id identity.
func (c *Client) FetchAccount(ctx context.Context, identity string) (*domain.Account, error) {
	m, err := c.api.GuildMember(c.guildID, identity, discordgo.WithContext(ctx))
	if err != nil {
		if isUnknown(err) {
			return nil, fmt.Errorf("member %s: %w", identity, domain.ErrIdentityNotFound)
		}
		return nil, fmt.Errorf("get guild member: %w", err)
	}
	acct := &domain.Account{ID: identity, RoleIDs: m.Roles}
	if m.User != nil {
		acct.ID = m.User.ID
		acct.Username = m.User.Username
	}
	return acct, nil
}

func (c *Client) HasPrivilege(account *domain.Account, roleID string) bool {
	return account.HasRole(roleID)
}

func (c *Client) GrantPrivilege(ctx context.Context, account *domain.Account, roleID string) error {
	if err := c.api.GuildMemberRoleAdd(c.guildID, account.ID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("add role %s to %s: %w", roleID, account.ID, err)
	}
	return nil
}

// SendDirectMessage opens (or reuses) the DM channel with identity and posts text.
func (c *Client) SendDirectMessage(ctx context.Context, identity, text string) error {
	ch, err := c.api.UserChannelCreate(identity, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open dm channel: %w", err)
	}
	if _, err := c.api.ChannelMessageSend(ch.ID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send dm: %w", err)
	}
	return nil
}

// isUnknown reports whether err is Discord saying the member or user does not exist.
func isUnknown(err error) bool {
	var rerr *discordgo.RESTError
	if !errors.As(err, &rerr) {
		return false
	}
	if rerr.Message != nil {
		switch rerr.Message.Code {
		case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser:
			return true
		}
	}
	return rerr.Response != nil && rerr.Response.StatusCode == http.StatusNotFound
}
