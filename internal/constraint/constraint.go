package constraint

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"icalmove/internal/model"
)

// Scheduling constraints ride inside the event DESCRIPTION as YAML front
// matter:
//
//	---
//	after: "Kickoff"
//	anchor: end
//	offsetDays: 2
//	---
//	free-text notes for the event
//
// or, for a fixed placement:
//
//	---
//	week: 2
//	day: -1
//	---
//
// Decode splits the front matter off and returns the typed constraint plus
// the remaining description body.

const delimiter = "---"

// frontMatter is the raw YAML shape before validation into model.Constraint.
type frontMatter struct {
	After      string `yaml:"after"`
	Anchor     string `yaml:"anchor"`
	OffsetDays int    `yaml:"offsetDays"`
	Week       int    `yaml:"week"`
	Day        int    `yaml:"day"`
	Optional   bool   `yaml:"optional"`
}

// Decode extracts a scheduling constraint from a description. A description
// without the front-matter delimiter yields (nil, description, nil).
func Decode(description string) (*model.Constraint, string, error) {
	raw, body, ok := split(description)
	if !ok {
		return nil, description, nil
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
		return nil, description, fmt.Errorf("constraint: invalid front matter: %w", err)
	}

	con, err := fm.toConstraint()
	if err != nil {
		return nil, description, err
	}
	return con, body, nil
}

func (fm frontMatter) toConstraint() (*model.Constraint, error) {
	if fm.After != "" && fm.Week != 0 {
		return nil, errors.New("constraint: both after and week given; pick one")
	}

	con := &model.Constraint{Optional: fm.Optional}

	switch {
	case fm.After != "":
		con.Kind = model.ConstraintRelative
		con.After = fm.After
		con.OffsetDays = fm.OffsetDays
		switch strings.ToLower(fm.Anchor) {
		case "", "start":
			con.Edge = model.AnchorStart
		case "end":
			con.Edge = model.AnchorEnd
		default:
			return nil, fmt.Errorf("constraint: unknown anchor %q", fm.Anchor)
		}

	case fm.Week != 0:
		if fm.Week < 0 {
			return nil, fmt.Errorf("constraint: week must be positive, got %d", fm.Week)
		}
		if fm.Day == 0 {
			fm.Day = 1
		}
		con.Kind = model.ConstraintFixed
		con.Week = fm.Week
		con.Day = fm.Day

	default:
		con.Kind = model.ConstraintNone
	}

	return con, nil
}

// split separates YAML front matter from the description body. The front
// matter must start on the first line and be closed by a bare delimiter
// line; anything else is treated as plain text.
func split(description string) (raw, body string, ok bool) {
	normalized := strings.ReplaceAll(description, "\r\n", "\n")
	if !strings.HasPrefix(normalized, delimiter+"\n") {
		return "", "", false
	}

	rest := normalized[len(delimiter)+1:]
	end := strings.Index(rest, "\n"+delimiter)
	if end == -1 {
		return "", "", false
	}

	raw = rest[:end]
	body = rest[end+1+len(delimiter):]
	body = strings.TrimPrefix(body, "\n")
	return raw, body, true
}
