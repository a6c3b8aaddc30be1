package ui

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user declines a confirmation prompt.
var ErrAborted = errors.New("operation cancelled")

// ConfirmErase asks the user to approve the deletion batch before any file is
// touched.
func ConfirmErase(fileCount, groupCount int) error {
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("Erase %d duplicate files from %d groups", fileCount, groupCount),
		IsConfirm: true,
		Default:   "n",
	}

	if _, err := prompt.Run(); err != nil {
		if err == promptui.ErrAbort {
			return ErrAborted
		}
		return fmt.Errorf("confirmation failed: %w", err)
	}
	return nil
}
