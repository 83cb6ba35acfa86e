package destination

import (
	"encoding/json"
	"time"
)

const discordEmbedColor = 5814783

// slackEnvelope wraps the current data in a Slack incoming-webhook message
// with the payload rendered as a fenced code block.
func slackEnvelope(message string, data any) map[string]any {
	return map[string]any{
		"text": message,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": "```" + prettyJSON(data) + "```",
				},
			},
		},
	}
}

// discordEnvelope wraps the current data in a Discord webhook message with
// the payload inside a json code fence embed.
func discordEnvelope(message string, data any) map[string]any {
	return map[string]any{
		"content": message,
		"embeds": []map[string]any{
			{
				"title":       message,
				"description": "```json\n" + prettyJSON(data) + "\n```",
				"color":       discordEmbedColor,
				"timestamp":   time.Now().UTC().Format(time.RFC3339),
			},
		},
	}
}

func prettyJSON(data any) string {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "{}"
	}

	return string(out)
}
