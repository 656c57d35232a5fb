package config

import (
	"log"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Buttons is the YAML-driven layout of the registration card keyboard.
// A missing file or missing keys mean defaults: every standard button
// visible, default labels, no extra buttons, open voter listing.
type Buttons struct {
	Visibility    Visibility    `yaml:"visibility"`
	CustomText    CustomText    `yaml:"custom_text"`
	Additional    []ExtraButton `yaml:"additional_buttons"`
	AccessControl AccessControl `yaml:"access_control"`
}

// Visibility toggles individual buttons. Join is always shown. Nil means
// visible, so an absent key keeps the button.
type Visibility struct {
	Maybe   *bool `yaml:"maybe"`
	Decline *bool `yaml:"decline"`
	Voters  *bool `yaml:"voters"`
	Refresh *bool `yaml:"refresh"`
}

func (v Visibility) ShowMaybe() bool   { return v.Maybe == nil || *v.Maybe }
func (v Visibility) ShowDecline() bool { return v.Decline == nil || *v.Decline }
func (v Visibility) ShowVoters() bool  { return v.Voters == nil || *v.Voters }
func (v Visibility) ShowRefresh() bool { return v.Refresh == nil || *v.Refresh }

// CustomText overrides button labels; empty values keep the defaults.
type CustomText struct {
	Join    string `yaml:"join"`
	Maybe   string `yaml:"maybe"`
	Decline string `yaml:"decline"`
	Voters  string `yaml:"voters"`
	Refresh string `yaml:"refresh"`
}

// ExtraButton is an additional URL button appended below the standard rows.
type ExtraButton struct {
	Text string `yaml:"text"`
	URL  string `yaml:"url"`
}

type AccessControl struct {
	RequireVoteToSeeVoters bool `yaml:"require_vote_to_see_voters"`
}

// LoadButtons reads the button layout. A missing file is not an error, the
// defaults apply.
func LoadButtons(path string) (Buttons, error) {
	var b Buttons
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return b, nil
	}
	if err != nil {
		return b, errors.Wrap(err, "unable to read button config")
	}
	if err := yaml.Unmarshal(data, &b); err != nil {
		return b, errors.Wrap(err, "unable to parse button config")
	}
	for _, extra := range b.Additional {
		if extra.Text == "" || extra.URL == "" {
			return b, errors.New("additional buttons need both text and url")
		}
	}
	log.Printf("loaded button configuration from %v", path)
	return b, nil
}
