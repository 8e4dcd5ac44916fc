package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/assist-by/stopguard/internal/config"
	"github.com/assist-by/stopguard/internal/notification"
	"github.com/assist-by/stopguard/internal/notification/discord"
)

func TestNewNotifier(t *testing.T) {
	var cfg config.Config
	assert.IsType(t, notification.Nop{}, newNotifier(&cfg))

	cfg.Discord.ErrorWebhook = "https://discord.example/error"
	assert.IsType(t, &discord.Client{}, newNotifier(&cfg), "error webhook alone still alerts")

	cfg = config.Config{}
	cfg.Discord.InfoWebhook = "https://discord.example/info"
	assert.IsType(t, &discord.Client{}, newNotifier(&cfg))
}
