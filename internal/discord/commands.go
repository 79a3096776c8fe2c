package discord

import "github.com/bwmarrin/discordgo"

// Commands builds the slash command set. The profile option is an enum over
// the loaded registry names so Discord rejects unknown profiles client-side;
// the handler still validates server-side.
func Commands(profileNames []string) []*discordgo.ApplicationCommand {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(profileNames))
	for _, name := range profileNames {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  name,
			Value: name,
		})
	}

	profileOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "profile",
		Description: "Choose a profile",
		Required:    true,
		Choices:     choices,
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "join",
			Description: "Join the voice channel the user is currently in.",
		},
		{
			Name:        "leave",
			Description: "Leave the current voice channel.",
		},
		{
			Name:        "ask_with_text",
			Description: "Ask a question to the bot with text",
			Options: []*discordgo.ApplicationCommandOption{
				profileOption,
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "text",
					Description: "The question to ask",
					Required:    true,
				},
			},
		},
		{
			Name:        "ask_with_voice",
			Description: "Ask a question to the bot with your voice. Use the stop_recording command if finished",
			Options:     []*discordgo.ApplicationCommandOption{profileOption},
		},
		{
			Name:        "stop_recording",
			Description: "Stop recording audio.",
		},
	}
}
