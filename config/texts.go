package config

import (
	"log"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const defaultLanguage = "en"

// Translations is one language section of the translations file: overrides
// for message texts and button labels, keyed as the templates package
// expects.
type Translations struct {
	Buttons  map[string]string `yaml:"buttons"`
	Messages map[string]string `yaml:"messages"`
}

// LoadTexts reads the translations file and flattens the section for the
// requested language into template override keys. A missing file, or a
// language the file does not define, keeps the built-in texts; an unknown
// language falls back to the English section when one exists.
func LoadTexts(path, language string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to read translations")
	}
	var byLanguage map[string]Translations
	if err := yaml.Unmarshal(data, &byLanguage); err != nil {
		return nil, errors.Wrap(err, "unable to parse translations")
	}
	section, ok := byLanguage[language]
	if !ok {
		log.Printf("language %v not found in %v, using %v", language, path, defaultLanguage)
		section, ok = byLanguage[defaultLanguage]
		if !ok {
			return nil, nil
		}
	}
	texts := map[string]string{}
	for key, text := range section.Messages {
		texts[key] = text
	}
	for key, text := range section.Buttons {
		texts["button_"+key] = text
	}
	log.Printf("loaded translations from %v", path)
	return texts, nil
}
