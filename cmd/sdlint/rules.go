package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sdlint/internal/config"
	"sdlint/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the lint rules sdlint knows about",
	Long:  "List every registered lint rule with the directives it inspects, whether it offers fixes, and whether the nearest manifest enables it.",
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type rulePayload struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Directives   []string `json:"directives,omitempty"`
	Fixable      bool     `json:"fixable"`
	Configurable bool     `json:"configurable"`
	Enabled      bool     `json:"enabled"`
}

func runRules(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	// A broken manifest must not keep the listing from printing; fall back
	// to the defaults where everything is enabled.
	cfg := config.Default()
	if wd, wdErr := os.Getwd(); wdErr == nil {
		if discovered, _, discErr := config.Discover(wd); discErr == nil && discovered != nil {
			cfg = discovered
		}
	}
	enabled := make(map[string]bool, len(cfg.Config.Rules))
	for _, name := range cfg.Config.Rules {
		enabled[name] = true
	}

	registry := rules.Default()
	payloads := make([]rulePayload, 0, registry.Len())
	for _, name := range registry.Names() {
		rule, ok := registry.Get(name)
		if !ok {
			continue
		}
		p := rulePayload{
			Name:        rule.Name(),
			Description: rule.Description(),
			Enabled:     len(enabled) == 0 || enabled[rule.Name()],
		}
		if dr, isDirective := rule.(rules.DirectiveRule); isDirective {
			p.Directives = dr.Directives()
		}
		if fx, isFixer := rule.(rules.Fixer); isFixer {
			p.Fixable = fx.Fixable()
		}
		if _, isConfigurable := rule.(rules.Configurable); isConfigurable {
			p.Configurable = true
		}
		payloads = append(payloads, p)
	}

	switch format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payloads)
	case "pretty":
		colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
		if err != nil {
			return err
		}
		useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))
		renderRulesPretty(payloads, useColor)
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func renderRulesPretty(payloads []rulePayload, useColor bool) {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	if !useColor {
		bold.DisableColor()
		dim.DisableColor()
	}

	for i, p := range payloads {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}

		traits := make([]string, 0, 4)
		for _, d := range p.Directives {
			traits = append(traits, "@"+d)
		}
		if p.Fixable {
			traits = append(traits, "fixable")
		}
		if p.Configurable {
			traits = append(traits, "configurable")
		}
		if !p.Enabled {
			traits = append(traits, "disabled by manifest")
		}

		line := bold.Sprint(p.Name)
		if len(traits) > 0 {
			line += "  " + dim.Sprintf("(%s)", strings.Join(traits, ", "))
		}
		fmt.Fprintln(os.Stdout, line)
		if p.Description != "" {
			fmt.Fprintf(os.Stdout, "    %s\n", p.Description)
		}
	}
}
