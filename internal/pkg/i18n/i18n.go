// Package i18n localizes user-facing API messages.
package i18n

import (
	"embed"
	"encoding/json"
	"path"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

const DefaultLocale = "en"

//go:embed locales/*.json
var localeFS embed.FS

var (
	bundle   *goi18n.Bundle
	initOnce sync.Once
	initErr  error
)

// Init loads the embedded message files. It is safe to call more than once.
func Init() error {
	initOnce.Do(func() {
		b := goi18n.NewBundle(language.English)
		b.RegisterUnmarshalFunc("json", json.Unmarshal)

		entries, err := localeFS.ReadDir("locales")
		if err != nil {
			initErr = err
			return
		}
		for _, entry := range entries {
			name := path.Join("locales", entry.Name())
			buf, err := localeFS.ReadFile(name)
			if err != nil {
				initErr = err
				return
			}
			if _, err := b.ParseMessageFileBytes(buf, name); err != nil {
				initErr = err
				return
			}
		}
		bundle = b
	})
	return initErr
}

// T returns the message for id in the best matching locale, falling back to
// English and finally to the id itself.
func T(locale, id string, data map[string]any) string {
	if err := Init(); err != nil {
		return id
	}

	localizer := goi18n.NewLocalizer(bundle, locale, DefaultLocale)
	msg, err := localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil && msg == "" {
		return id
	}
	return msg
}
