package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandevgo/trunk/internal/core"
)

type stubCommand struct {
	name   string
	result string
	err    error
	called bool
}

func (c *stubCommand) Name() string        { return c.name }
func (c *stubCommand) Description() string { return "stub" }
func (c *stubCommand) Execute(_ context.Context, _ string, _ []string) (string, error) {
	c.called = true
	return c.result, c.err
}

func TestRouterIgnoresPlainText(t *testing.T) {
	router := New([]core.Command{&stubCommand{name: "skills"}})

	out, handled := router.Execute(context.Background(), "s1", "what is trending on github")

	assert.False(t, handled)
	assert.Empty(t, out)
}

func TestRouterDispatches(t *testing.T) {
	cmd := &stubCommand{name: "skills", result: "3 skills loaded"}
	router := New([]core.Command{cmd})

	out, handled := router.Execute(context.Background(), "s1", "/skills list them")

	assert.True(t, handled)
	assert.True(t, cmd.called)
	assert.Equal(t, "3 skills loaded", out)
}

func TestRouterUnknownCommand(t *testing.T) {
	router := New(nil)

	out, handled := router.Execute(context.Background(), "s1", "/nope")

	assert.True(t, handled)
	assert.Contains(t, out, "Unknown command: /nope")
}

func TestRouterCommandError(t *testing.T) {
	router := New([]core.Command{&stubCommand{name: "memory", err: errors.New("store closed")}})

	out, handled := router.Execute(context.Background(), "s1", "/memory")

	assert.True(t, handled)
	assert.Contains(t, out, "Error: store closed")
}
