package app

import (
	"github.com/vk/varflow/internal/registry"
	"github.com/vk/varflow/modules/numeric"
	"github.com/vk/varflow/modules/stats"
)

// coreModules is the definitive list of all handler modules that are
// compiled into the varflow binary.
var coreModules = []registry.Module{
	&numeric.Module{},
	&stats.Module{},
}
