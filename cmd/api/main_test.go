package main

import (
	"context"
	"errors"
	"testing"

	"github.com/devconnector/devconnector-go/internal/config"
)

func TestNewAppCommands(t *testing.T) {
	app := newApp()

	for _, name := range []string{"serve", "migrate"} {
		if app.Command(name) == nil {
			t.Errorf("command %q not registered", name)
		}
	}
	if app.Action == nil {
		t.Error("expected a default action")
	}
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, err := openStore(context.Background(), config.Config{StoreDriver: "sqlite"})
	if !errors.Is(err, config.ErrUnknownStore) {
		t.Errorf("expected ErrUnknownStore, got %v", err)
	}
}
