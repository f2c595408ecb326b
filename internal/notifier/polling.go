package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CommandHandler is called when a chat command is received. The returned
// string is sent back as the reply; empty means no reply.
type CommandHandler func(command string) string

type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// StartPolling long-polls for chat commands (/status, /props, /slips,
// /refresh). Only the configured chat is served; plain messages and
// commands from other chats are dropped. Blocks until ctx is cancelled.
func (t *Telegram) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	client := &http.Client{Timeout: 35 * time.Second}
	allowedChat, _ := strconv.ParseInt(t.ChatID, 10, 64)

	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] Telegram polling stopped")
			return
		default:
		}

		apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/getUpdates?offset=%d&timeout=30", t.BotToken, offset)
		req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
		if err != nil {
			log.Printf("[ERROR] create polling request: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[WARN] polling request failed: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			log.Printf("[WARN] read polling response: %v", err)
			continue
		}

		var result struct {
			OK     bool             `json:"ok"`
			Result []telegramUpdate `json:"result"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			log.Printf("[WARN] decode polling response: %v", err)
			continue
		}

		for _, update := range result.Result {
			offset = update.UpdateID + 1
			if update.Message == nil {
				continue
			}
			if allowedChat != 0 && update.Message.Chat.ID != allowedChat {
				log.Printf("[WARN] ignoring command from unauthorised chat %d", update.Message.Chat.ID)
				continue
			}
			cmd, ok := parseCommand(update.Message.Text)
			if !ok {
				continue
			}
			log.Printf("[INFO] received command: %s", cmd)
			reply := handler(cmd)
			if reply != "" {
				if err := t.Send(reply); err != nil {
					log.Printf("[ERROR] send reply: %v", err)
				}
			}
		}
	}
}

// parseCommand extracts a slash command from a chat message. Group chats
// address commands as "/props@BotName"; the mention is stripped so the
// handler sees the bare command.
func parseCommand(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	if at := strings.IndexByte(text, '@'); at > 0 {
		rest := ""
		if sp := strings.IndexByte(text, ' '); sp > at {
			rest = text[sp:]
		}
		text = text[:at] + rest
	}
	return text, true
}
