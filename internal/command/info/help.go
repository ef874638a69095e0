// Package info holds commands that describe the bot itself.
package info

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"tunebot/internal/command"
	"tunebot/internal/config"
	"tunebot/pkg/cmd"
)

const embedColor = 0x0099ff

type HelpCommand struct {
	Registry *cmd.Registry
	Prefix   string
}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Список доступных команд" }
func (c *HelpCommand) Aliases() []string   { return []string{"h"} }
func (c *HelpCommand) Category() string    { return config.CategoryInfo }

func (c *HelpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *HelpCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	cc, err := command.FromInvocation(inv)
	if err != nil {
		return err
	}

	return cc.Responder.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       "Помощь",
		Description: c.render(),
		Color:       embedColor,
	})
}

// render lists commands grouped by category, categories ordered by weight.
func (c *HelpCommand) render() string {
	byCategory := make(map[string][]cmd.Command)
	for _, command := range c.Registry.GetAll() {
		cat := cmd.CategoryOf(command)
		byCategory[cat] = append(byCategory[cat], command)
	}

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool {
		wi, wj := config.CategoryWeights[categories[i]], config.CategoryWeights[categories[j]]
		if wi != wj {
			return wi < wj
		}
		return categories[i] < categories[j]
	})

	var sb strings.Builder
	for _, cat := range categories {
		title, ok := config.CategoryTitles[cat]
		if !ok {
			title = cat
		}
		fmt.Fprintf(&sb, "**%s**\n", title)

		for _, command := range byCategory[cat] {
			fmt.Fprintf(&sb, "`%s%s`", c.Prefix, cmd.UsageOf(command))
			if aliases := cmd.AliasesOf(command); len(aliases) > 0 {
				fmt.Fprintf(&sb, " (%s)", strings.Join(aliases, ", "))
			}
			fmt.Fprintf(&sb, " - %s\n", command.Description())
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}
