//go:build linux || darwin || windows || openbsd || netbsd || freebsd
// +build linux darwin windows openbsd netbsd freebsd

package cmd

import (
	"os"

	"github.com/AlecAivazis/survey/v2"
	log "github.com/sirupsen/logrus"

	"github.com/nektos/stv/pkg/common/utils"
)

// selectCandidate asks on the terminal, answering def when there is no terminal to ask on
func selectCandidate(message string, options []string, def string) string {
	if !utils.CheckIfTerminal(os.Stdin) {
		return def
	}
	answer := def
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: def,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		log.Warnf("Failed to retrieve your choice, using %s: %v", def, err)
		return def
	}
	return answer
}
