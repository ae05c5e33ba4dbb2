// Package prompt builds the LLM prompts for classification and daily picks.
// Substitution is plain named-placeholder replacement over a small recognized
// set; anything else in braces is left untouched so partial custom templates
// keep working.
package prompt

import (
	"fmt"
	"strings"

	"thoughtcap/internal/models"
)

// Recognized placeholders.
const (
	PlaceholderUserBackground = "{user_background}"
	PlaceholderRecentItems    = "{recent_items}"
	PlaceholderVerbatimInput  = "{verbatim_input}"

	PlaceholderPendingItems   = "{pending_items}"
	PlaceholderDayOfWeek      = "{day_of_week}"
	PlaceholderCurrentTime    = "{current_time}"
	PlaceholderRecentConsumed = "{recent_consumed}"
	PlaceholderRecentCaptured = "{recent_captured}"
)

const noBackground = "Nessun background impostato"

// DefaultClassifyTemplate is the compiled-in classification prompt, used when
// the user has no classify_prompt override configured.
const DefaultClassifyTemplate = `Sei un assistente per una persona con ADHD che cattura pensieri velocemente.

USER BACKGROUND:
{user_background}

RECENT CONTEXT (ultimi 5 pensieri):
{recent_items}

INPUT UTENTE:
"{verbatim_input}"

TASK:
1. Classifica il tipo di pensiero
2. Estrai titolo corretto e informazioni reali
3. Fornisci link da fonti autorevoli (IMDb, Spotify, Wikipedia, Bandcamp, etc)
4. Stima tempo necessario
5. Assegna priorità

OUTPUT (SOLO JSON, NO markdown, NO testo aggiuntivo):
{
  "type": "film|book|concept|music|art|todo|other",
  "title": "titolo estratto/inferito",
  "description": "cosa significa questo pensiero (1-2 frasi)",
  "links": [
    {"url": "...", "type": "imdb|spotify|wikipedia|article|..."}
  ],
  "estimated_minutes": 30,
  "priority": 3,
  "tags": ["tag1", "tag2"],
  "consumption_suggestion": "come/quando consumarlo"
}

REGOLE:
- Sii generoso nell'interpretazione (preferisci classificare che "other")
- Se ambiguo, usa il background utente per disambiguare
- Link solo da fonti reali (no invenzioni)
- Stima tempo realisticamente (film=120min, concept=15-30min, libro=varie ore)
- Priorità: 5=urgente/evento, 4=interessante, 3=normale, 2=bassa, 1=archivio
- Tag: max 3-4, semantici (es: "sci-fi", "philosophy", "ambient-music")
- RISPONDI SOLO CON IL JSON, niente altro testo prima o dopo`

// DefaultPicksTemplate is the compiled-in daily picks rationale prompt.
const DefaultPicksTemplate = `Sei un assistente che aiuta una persona ADHD a consumare contenuti in modo sostenibile.

USER BACKGROUND:
{user_background}

PENDING ITEMS (già selezionati, da ordinare e motivare):
{pending_items}

CONTEXT:
- Oggi è: {day_of_week}
- Ora: {current_time}
- Ultimi 7 giorni: consumati {recent_consumed}, catturati {recent_captured}

TASK:
Per ogni item selezionato scrivi una breve ragione ("perché oggi") e ordina
gli item dal più al meno adatto alla giornata.

OUTPUT (SOLO JSON, senza markdown):
{
  "picks": [
    {"item_id": "abc123", "reason": "perché lo suggerisci oggi"}
  ],
  "message": "messaggio motivazionale per l'utente (1 frase)"
}

REGOLE:
- Usa SOLO gli item_id forniti, nessun altro
- Considera il mood del giorno (venerdì sera ≠ lunedì mattina)
- Messaggio positivo, mai giudicante
- RISPONDI SOLO CON IL JSON, niente altro testo prima o dopo`

// Build renders the classification prompt. template may be empty, in which
// case the compiled-in default is used. recentItems should already be capped
// to the context window (≤5).
func Build(template, userBackground string, recentItems []models.Item, verbatimInput string) string {
	if template == "" {
		template = DefaultClassifyTemplate
	}
	if userBackground == "" {
		userBackground = noBackground
	}

	return substitute(template, map[string]string{
		PlaceholderUserBackground: userBackground,
		PlaceholderRecentItems:    RenderRecentItems(recentItems),
		PlaceholderVerbatimInput:  verbatimInput,
	})
}

// PicksContext carries the dynamic fields of the picks prompt.
type PicksContext struct {
	UserBackground string
	Selected       []models.Item
	DayOfWeek      string
	CurrentTime    string
	RecentConsumed int64
	RecentCaptured int64
}

// BuildPicks renders the daily picks rationale prompt over the already
// selected items.
func BuildPicks(template string, pc PicksContext) string {
	if template == "" {
		template = DefaultPicksTemplate
	}
	background := pc.UserBackground
	if background == "" {
		background = noBackground
	}

	return substitute(template, map[string]string{
		PlaceholderUserBackground: background,
		PlaceholderPendingItems:   RenderPicksPool(pc.Selected),
		PlaceholderDayOfWeek:      pc.DayOfWeek,
		PlaceholderCurrentTime:    pc.CurrentTime,
		PlaceholderRecentConsumed: fmt.Sprintf("%d", pc.RecentConsumed),
		PlaceholderRecentCaptured: fmt.Sprintf("%d", pc.RecentCaptured),
	})
}

// substitute replaces exactly the recognized placeholders. Unrecognized
// {...} tokens stay verbatim, which keeps the template contract auditable
// and tolerates partial custom templates.
func substitute(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for placeholder, value := range values {
		pairs = append(pairs, placeholder, value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// RenderRecentItems renders the recent-item context as compact numbered
// lines. Type plus title is enough to keep recurring topics (franchises,
// series) classified consistently without blowing up the prompt.
func RenderRecentItems(items []models.Item) string {
	if len(items) == 0 {
		return "Nessun item recente"
	}

	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, item.ItemType, item.Title)
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderPicksPool renders selected items with id, type, time and age so the
// rationale model can order them sensibly.
func RenderPicksPool(items []models.Item) string {
	if len(items) == 0 {
		return "Nessun item"
	}

	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. [ID: %s] [%s] %s — %dmin, priorità %d\n",
			i+1, item.ID.Hex(), item.ItemType, item.Title, item.EstimatedMinutes, item.Priority)
	}
	return strings.TrimRight(b.String(), "\n")
}
