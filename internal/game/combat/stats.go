package combat

import (
	"fmt"
	"strings"
)

// Stat names one of the six core attributes.
type Stat int

const (
	Strength Stat = iota
	Dexterity
	Constitution
	Intelligence
	Wisdom
	Charisma
)

// String returns the lower-case attribute name.
func (s Stat) String() string {
	switch s {
	case Strength:
		return "strength"
	case Dexterity:
		return "dexterity"
	case Constitution:
		return "constitution"
	case Intelligence:
		return "intelligence"
	case Wisdom:
		return "wisdom"
	case Charisma:
		return "charisma"
	default:
		return "unknown"
	}
}

// ParseStat returns the Stat named by s, case-insensitively.
func ParseStat(s string) (Stat, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for st := Strength; st <= Charisma; st++ {
		if st.String() == name {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown stat %q", s)
}

// StatBlock holds the six core attribute scores, practically in 1..30.
type StatBlock struct {
	Strength     int `yaml:"strength"`
	Dexterity    int `yaml:"dexterity"`
	Constitution int `yaml:"constitution"`
	Intelligence int `yaml:"intelligence"`
	Wisdom       int `yaml:"wisdom"`
	Charisma     int `yaml:"charisma"`
}

// Get returns the score for s; unknown stats read as 0.
func (b StatBlock) Get(s Stat) int {
	switch s {
	case Strength:
		return b.Strength
	case Dexterity:
		return b.Dexterity
	case Constitution:
		return b.Constitution
	case Intelligence:
		return b.Intelligence
	case Wisdom:
		return b.Wisdom
	case Charisma:
		return b.Charisma
	default:
		return 0
	}
}

// Add returns the attribute-wise sum of b and o.
func (b StatBlock) Add(o StatBlock) StatBlock {
	return StatBlock{
		Strength:     b.Strength + o.Strength,
		Dexterity:    b.Dexterity + o.Dexterity,
		Constitution: b.Constitution + o.Constitution,
		Intelligence: b.Intelligence + o.Intelligence,
		Wisdom:       b.Wisdom + o.Wisdom,
		Charisma:     b.Charisma + o.Charisma,
	}
}

// With returns a copy of b with the score for s set to v. Unknown stats
// leave b unchanged.
func (b StatBlock) With(s Stat, v int) StatBlock {
	switch s {
	case Strength:
		b.Strength = v
	case Dexterity:
		b.Dexterity = v
	case Constitution:
		b.Constitution = v
	case Intelligence:
		b.Intelligence = v
	case Wisdom:
		b.Wisdom = v
	case Charisma:
		b.Charisma = v
	}
	return b
}
