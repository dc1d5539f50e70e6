package main

import (
	"fmt"
	"os"
	"strings"
)

type progressMode string

const (
	progressModeAuto progressMode = "auto"
	progressModeOn   progressMode = "on"
	progressModeOff  progressMode = "off"
)

func readProgressMode(value string) (progressMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return progressModeAuto, nil
	case "on":
		return progressModeOn, nil
	case "off":
		return progressModeOff, nil
	default:
		return "", fmt.Errorf("invalid --progress value %q (expected auto|on|off)", value)
	}
}

func shouldShowProgress(mode progressMode) bool {
	switch mode {
	case progressModeOn:
		return true
	case progressModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}
