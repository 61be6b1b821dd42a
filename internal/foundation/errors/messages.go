package errors

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// English defaults double as catalog keys.
var userMessageKeys = map[Kind]string{
	KindNetwork:            "network connection issue, please retry later",
	KindAuthentication:     "authentication failed, please sign in again",
	KindAPI:                "the service returned an error, please try again later",
	KindValidation:         "some of the provided information is invalid",
	KindConfiguration:      "the client is misconfigured, please contact support",
	KindSerialization:      "the response could not be processed",
	KindBusiness:           "the request could not be completed",
	KindTimeout:            "the request timed out, please retry later",
	KindRateLimit:          "too many requests, please slow down",
	KindServiceUnavailable: "the service is temporarily unavailable",
	KindInternal:           "an unexpected error occurred",
}

var translations = map[language.Tag]map[Kind]string{
	language.German: {
		KindNetwork:            "Netzwerkverbindungsproblem, bitte später erneut versuchen",
		KindAuthentication:     "Anmeldung fehlgeschlagen, bitte erneut anmelden",
		KindAPI:                "Der Dienst hat einen Fehler gemeldet, bitte später erneut versuchen",
		KindValidation:         "Einige der angegebenen Daten sind ungültig",
		KindConfiguration:      "Der Client ist falsch konfiguriert, bitte den Support kontaktieren",
		KindSerialization:      "Die Antwort konnte nicht verarbeitet werden",
		KindBusiness:           "Die Anfrage konnte nicht abgeschlossen werden",
		KindTimeout:            "Zeitüberschreitung der Anfrage, bitte später erneut versuchen",
		KindRateLimit:          "Zu viele Anfragen, bitte langsamer",
		KindServiceUnavailable: "Der Dienst ist vorübergehend nicht verfügbar",
		KindInternal:           "Ein unerwarteter Fehler ist aufgetreten",
	},
	language.Norwegian: {
		KindNetwork:            "Problem med nettverkstilkoblingen, prøv igjen senere",
		KindAuthentication:     "Autentisering feilet, logg inn på nytt",
		KindAPI:                "Tjenesten returnerte en feil, prøv igjen senere",
		KindValidation:         "Noe av informasjonen som ble oppgitt er ugyldig",
		KindConfiguration:      "Klienten er feilkonfigurert, kontakt brukerstøtte",
		KindSerialization:      "Svaret kunne ikke behandles",
		KindBusiness:           "Forespørselen kunne ikke fullføres",
		KindTimeout:            "Forespørselen tok for lang tid, prøv igjen senere",
		KindRateLimit:          "For mange forespørsler, vennligst senk tempoet",
		KindServiceUnavailable: "Tjenesten er midlertidig utilgjengelig",
		KindInternal:           "En uventet feil oppstod",
	},
}

// supportedLanguages lists English first so it is the matcher default.
var supportedLanguages = []language.Tag{language.English, language.German, language.Norwegian}

var (
	userCatalog = newUserCatalog()
	userMatcher = language.NewMatcher(supportedLanguages)
)

func newUserCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for kind, key := range userMessageKeys {
		_ = b.SetString(language.English, key, key)
		for tag, msgs := range translations {
			if msg, ok := msgs[kind]; ok {
				_ = b.SetString(tag, key, msg)
			}
		}
	}
	return b
}

// SupportedLanguages lists the languages user messages are translated into.
func SupportedLanguages() []language.Tag {
	out := make([]language.Tag, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// DefaultUserMessage returns the English user message for k.
func DefaultUserMessage(k Kind) string {
	if msg, ok := userMessageKeys[k]; ok {
		return msg
	}
	return userMessageKeys[KindInternal]
}

// LocalizedUserMessage renders e's user message in the best matching
// supported language. An explicit user message set on the context is
// returned verbatim.
func LocalizedUserMessage(e Error, tag language.Tag) string {
	if e == nil {
		return DefaultUserMessage(KindInternal)
	}
	if msg, ok := e.Context().UserMessage().Get(); ok {
		return msg
	}
	_, idx, conf := userMatcher.Match(tag)
	if conf == language.No {
		idx = 0
	}
	p := message.NewPrinter(supportedLanguages[idx], message.Catalog(userCatalog))
	key := DefaultUserMessage(e.Kind())
	return p.Sprintf(message.Key(key, key))
}
