package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/RamaShankarRay/XGpt/internal/domain/entity"
)

var (
	chatStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)
)

// RenderChatList renders the user's chats as a tree, newest first.
func RenderChatList(chats []*entity.Chat) string {
	if len(chats) == 0 {
		return keyStyle.Render("No chats found")
	}

	root := tree.Root(chatStyle.Render("Chats"))
	for _, chat := range chats {
		root.Child(buildChatNode(chat))
	}

	return root.String()
}

// RenderChatSummary renders the chat count summary line.
func RenderChatSummary(count int) string {
	noun := "chats"
	if count == 1 {
		noun = "chat"
	}
	return summaryStyle.Render(fmt.Sprintf("%d %s", count, noun))
}

func buildChatNode(chat *entity.Chat) *tree.Tree {
	node := tree.Root(chatStyle.Render(chat.Title))
	node.Child(kv("id", chat.ID))
	node.Child(kv("messages", fmt.Sprintf("%d", chat.MessageCount)))
	node.Child(kv("updated", formatMillis(chat.UpdatedAt)))
	return node
}

func kv(key, value string) string {
	return keyStyle.Render(key+": ") + valueStyle.Render(value)
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "unknown"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04:05")
}
