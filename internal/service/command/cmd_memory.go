package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/trunk/internal/core"
	"github.com/sandevgo/trunk/internal/service/memory"
)

type MemoryCommand struct {
	memory    *memory.Manager
	formatter *ResponseFormatter
}

func NewMemoryCommand(mgr *memory.Manager) core.Command {
	return &MemoryCommand{
		memory:    mgr,
		formatter: NewResponseFormatter(),
	}
}

func (c *MemoryCommand) Name() string {
	return "memory"
}

func (c *MemoryCommand) Description() string {
	return "Show memory stats or search stored facts"
}

func (c *MemoryCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if len(args) > 0 {
		return c.search(strings.Join(args, " ")), nil
	}
	return c.stats(), nil
}

func (c *MemoryCommand) stats() string {
	stats := c.memory.Stats()

	var byType []string
	for factType, count := range stats.FactsByType {
		byType = append(byType, fmt.Sprintf("%s: %d", factType, count))
	}

	return c.formatter.Combine(
		c.formatter.Info("Memory"),
		c.formatter.Label("Episodes", fmt.Sprintf("%d (%d successful)", stats.Episodes, stats.Successful)),
		c.formatter.Label("Facts", fmt.Sprintf("%d", stats.Facts)),
		c.formatter.List(byType),
	)
}

func (c *MemoryCommand) search(query string) string {
	facts := c.memory.SearchFacts(query)
	if len(facts) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Fact Search"),
			c.formatter.Label("Result", "No fact matched the query."),
		)
	}

	items := make([]string, len(facts))
	for i, fact := range facts {
		items[i] = fmt.Sprintf("[%s] **%s** — %s", fact.Type, fact.Key, fact.Value)
	}
	return c.formatter.Combine(
		c.formatter.Info("Fact Search"),
		c.formatter.List(items),
	)
}
