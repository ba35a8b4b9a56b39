// Package all registers all shell commands.
package all

import (
	_ "github.com/robotalks/ftlink/pkg/cli/cmds/ft"
)
