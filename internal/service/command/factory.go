package command

import (
	"github.com/sandevgo/trunk/internal/config"
	"github.com/sandevgo/trunk/internal/core"
	"github.com/sandevgo/trunk/internal/service/memory"
	"github.com/sandevgo/trunk/internal/service/skills"
)

// NewRouter wires the standard command set. Help registers last so it can
// list the router it belongs to.
func NewRouter(
	skillsMgr *skills.Manager,
	memoryMgr *memory.Manager,
	cfg *config.AgentConfig,
) *Router {
	router := New([]core.Command{
		NewSkillsCommand(skillsMgr, cfg.MaxSkills),
		NewMemoryCommand(memoryMgr),
	})
	router.commands["help"] = NewHelpCommand(router)
	return router
}
