package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// DefaultLanguage is used when no language is configured and as the fallback for missing messages.
const DefaultLanguage = "en"

var (
	supported = []language.Tag{language.English, language.German}
	matcher   = language.NewMatcher(supported)
)

// NormalizeLanguage maps a tag such as "de-AT" onto a language with notification
// texts. An empty value selects DefaultLanguage.
func NormalizeLanguage(lang string) (string, error) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return DefaultLanguage, nil
	}

	tag, err := language.Parse(lang)
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", lang, err)
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return "", fmt.Errorf("unsupported language %q", lang)
	}

	base, _ := supported[index].Base()
	return base.String(), nil
}

// I18nService renders notification texts from the embedded message files.
type I18nService struct {
	bundle *i18n.Bundle
}

func NewI18nService() *I18nService {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	files, _ := fs.Glob(localeFS, "locales/*.json")
	for _, file := range files {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			slog.Warn("failed to load locale file", "file", file, "error", err)
		}
	}

	return &I18nService{bundle: bundle}
}

func (s *I18nService) localizer(lang string) *i18n.Localizer {
	if lang == "" {
		lang = DefaultLanguage
	}
	return i18n.NewLocalizer(s.bundle, lang, DefaultLanguage)
}

// Message renders messageID in lang. Unknown IDs come back unchanged.
func (s *I18nService) Message(lang, messageID string, data map[string]any) string {
	msg, err := s.localizer(lang).Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}

// Plural renders the plural form of messageID matching count, exposed to the template as Count.
func (s *I18nService) Plural(lang, messageID string, count int) string {
	msg, err := s.localizer(lang).Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: map[string]any{"Count": count},
		PluralCount:  count,
	})
	if err != nil {
		return fmt.Sprintf("%s (%d)", messageID, count)
	}
	return msg
}

// FormatDate renders a calendar date the way lang usually writes it.
func FormatDate(lang string, t time.Time) string {
	switch lang {
	case "de":
		return t.Format("02.01.2006")
	default:
		return t.Format("Jan 2, 2006")
	}
}
