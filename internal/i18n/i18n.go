// internal/i18n/i18n.go
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

//go:embed locales/*.json
var bundled embed.FS

type I18n struct {
	mu           sync.RWMutex
	translations map[string]map[string]string
	defaultLang  string
}

// DefaultLanguage is used when neither the request nor the configuration names a locale.
const DefaultLanguage = "en"

var instance *I18n
var once sync.Once

// Initialize loads the catalogue. Locale files under localesPath override the bundled ones;
// an empty or missing directory falls back to the bundled catalogue.
func Initialize(defaultLang, localesPath string) error {
	var err error
	once.Do(func() {
		if defaultLang == "" {
			defaultLang = DefaultLanguage
		}
		instance = &I18n{
			translations: make(map[string]map[string]string),
			defaultLang:  defaultLang,
		}
		var sub fs.FS
		sub, err = fs.Sub(bundled, "locales")
		if err != nil {
			return
		}
		if err = instance.LoadTranslations(sub); err != nil {
			return
		}
		if localesPath != "" {
			if info, statErr := os.Stat(localesPath); statErr == nil && info.IsDir() {
				err = instance.LoadTranslations(os.DirFS(localesPath))
			}
		}
	})
	return err
}

func (i *I18n) LoadTranslations(fsys fs.FS) error {
	files, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return err
	}

	for _, file := range files {
		lang := strings.TrimSuffix(filepath.Base(file), ".json")

		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", file, err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return fmt.Errorf("failed to unmarshal locale file %s: %w", file, err)
		}

		i.mu.Lock()
		if i.translations[lang] == nil {
			i.translations[lang] = make(map[string]string, len(translations))
		}
		for k, v := range translations {
			i.translations[lang][k] = v
		}
		i.mu.Unlock()
	}

	return nil
}

func (i *I18n) T(lang, key string, args ...interface{}) string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	// Try to get translation for requested language
	if text, ok := i.lookup(lang, key); ok {
		return format(text, args)
	}

	// Fallback to default language
	if lang != i.defaultLang {
		if text, ok := i.lookup(i.defaultLang, key); ok {
			return format(text, args)
		}
	}

	// Return key if no translation found
	return key
}

func (i *I18n) lookup(lang, key string) (string, bool) {
	translations, ok := i.translations[lang]
	if !ok {
		return "", false
	}
	text, ok := translations[key]
	return text, ok
}

func format(text string, args []interface{}) string {
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

// Global functions
func T(lang, key string, args ...interface{}) string {
	if instance != nil {
		return instance.T(lang, key, args...)
	}
	return key
}

func GetSupportedLanguages() []string {
	if instance == nil {
		return []string{"en"}
	}

	instance.mu.RLock()
	defer instance.mu.RUnlock()

	langs := make([]string, 0, len(instance.translations))
	for lang := range instance.translations {
		langs = append(langs, lang)
	}
	return langs
}

// locale aliases accepted in Accept-Language, lowercased.
var aliases = map[string]string{
	"en":      "en",
	"en-us":   "en",
	"en-gb":   "en",
	"zh":      "zh_TW",
	"zh-tw":   "zh_TW",
	"zh_tw":   "zh_TW",
	"zh-hant": "zh_TW",
	"zh-hk":   "zh_TW",
}

// MatchLanguage picks the catalogue locale for an Accept-Language header. Tags are tried in
// descending q order; the first one with a catalogue wins, otherwise fallback.
func MatchLanguage(header, fallback string) string {
	type tag struct {
		name string
		q    float64
	}

	var tags []tag
	for _, part := range strings.Split(header, ",") {
		fields := strings.Split(strings.TrimSpace(part), ";")
		name := strings.ToLower(strings.TrimSpace(fields[0]))
		if name == "" {
			continue
		}
		q := 1.0
		for _, param := range fields[1:] {
			param = strings.TrimSpace(param)
			if strings.HasPrefix(param, "q=") {
				if v, err := strconv.ParseFloat(param[2:], 64); err == nil {
					q = v
				}
			}
		}
		if q > 0 {
			tags = append(tags, tag{name, q})
		}
	}
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].q > tags[j].q })

	for _, t := range tags {
		if lang, ok := aliases[t.name]; ok {
			return lang
		}
	}
	return fallback
}
