package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TeamInfo labels one side of the match.
type TeamInfo struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

// Match is the capture tool's per-match metadata. The tool writes it as JSON
// (tracker_config.json); YAML is accepted too.
type Match struct {
	MapName   string            `yaml:"map_name"`
	MapNumber int               `yaml:"map_number"`
	Team1     TeamInfo          `yaml:"team1"`
	Team2     TeamInfo          `yaml:"team2"`
	Colors    map[string]string `yaml:"Colors"`
}

// LoadMatch reads match metadata from path.
func LoadMatch(path string) (*Match, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: match file: %w", ErrLoadConfig, err)
	}
	var m Match
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: match file %s: %w", ErrInvalidConfig, path, err)
	}
	if m.MapNumber == 0 {
		m.MapNumber = 1
	}
	return &m, nil
}

// TeamNames returns the configured names; empty when unset so callers fall
// back to the score column headers.
func (m *Match) TeamNames() (string, string) {
	if m == nil {
		return "", ""
	}
	return strings.TrimSpace(m.Team1.Name), strings.TrimSpace(m.Team2.Name)
}

// TeamColor resolves a team's color through the named palette. Unknown names
// are returned as written.
func (m *Match) TeamColor(team1 bool) string {
	if m == nil {
		return ""
	}
	c := m.Team2.Color
	if team1 {
		c = m.Team1.Color
	}
	c = strings.TrimSpace(c)
	if strings.HasPrefix(c, "#") {
		return c
	}
	if hex, ok := m.Colors[c]; ok {
		return hex
	}
	return c
}

// Title renders "MAP <n> - <MAP NAME>".
func (m *Match) Title() string {
	if m == nil || m.MapName == "" {
		return ""
	}
	return fmt.Sprintf("MAP %d - %s", m.MapNumber, strings.ToUpper(m.MapName))
}
