package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "前受金", truncate("前受金", 3))
	assert.Equal(t, "前受…", truncate("前受金", 2))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"export", "keywords", "rank", "ask", "migrate", "events"} {
		assert.True(t, names[want], want)
	}
}
