package ui

import (
	"io"
	"strings"

	"github.com/noborus/ov/oviewer"
)

// RunPager shows content in the ov pager until the user quits it
func RunPager(content string) error {
	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	// Keep the dashboard screen intact on exit
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// pagerCommand runs the pager through tea.Exec, which releases the
// terminal while ov owns it
type pagerCommand struct {
	content string
}

func (c *pagerCommand) Run() error {
	return RunPager(c.content)
}

func (c *pagerCommand) SetStdin(io.Reader)  {}
func (c *pagerCommand) SetStdout(io.Writer) {}
func (c *pagerCommand) SetStderr(io.Writer) {}
