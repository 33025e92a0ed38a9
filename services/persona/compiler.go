package persona

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"unicode"

	"patientsim/models"

	"github.com/samber/lo"
)

const (
	DefaultWordSample    = 3
	DefaultSentenceLimit = "3"

	bodySeparator = "\n\t"

	personalityEmphasis = "\n\t\tIMPORTANT: Ensure that your personality is clearly represented throughout the conversation, while allowing your emotional tone and style to vary naturally across turns."

	dazedNarrative = "\n\tThe patient's initial dazed level is %s. " +
		"The dazedness should gradually fade throughout the conversation as the doctor continues to reassure them. " +
		"Transitions should feel smooth and natural, rather than abrupt. " +
		"While the change should be subtle and progressive, the overall dazed level is expected to decrease noticeably every 4-5 turns, following the instructions for each level below."

	dazedNote = "\n\tNote: Dazedness reflects the patient's state of confusion and inability in following the conversation, independent of their language proficiency."
)

var (
	cefrLevels  = []string{"A", "B", "C"}
	dazedLevels = []string{"high", "moderate", "normal"}
	dazedPhases = []string{"initial", "intermediate", "later"}
)

// Compiler renders the bias axes of a patient record into prompt text.
type Compiler struct {
	dicts      *Dictionaries
	wordSample int
}

func NewCompiler(dicts *Dictionaries, wordSample int) *Compiler {
	if dicts == nil {
		dicts = DefaultDictionaries()
	}
	if wordSample <= 0 {
		wordSample = DefaultWordSample
	}
	return &Compiler{dicts: dicts, wordSample: wordSample}
}

// Compile validates the four axis selectors of rec and stores the rendered
// persona on it. rec is left untouched when validation fails.
func (c *Compiler) Compile(rec *models.PatientRecord) error {
	if err := c.Validate(rec); err != nil {
		return err
	}

	p := &models.Persona{
		CEFR:        rec.CEFR,
		Personality: rec.Personality,
		RecallLevel: rec.RecallLevel,
		DazedLevel:  rec.DazedLevel,
	}

	c.renderCEFR(rec, p)
	p.PersonalityText = c.renderPersonality(rec.Personality)
	p.RecallText = capitalize(rec.RecallLevel) + "\n\t\t" + strings.Join(body(c.dicts.Recall[rec.RecallLevel]), "\n\t\t")
	p.DazedText = c.renderDazed(rec.DazedLevel)
	p.Reminder = "You should act like " + directive(c.dicts.CEFR[rec.CEFR]) +
		" You are " + directive(c.dicts.Personality[rec.Personality]) +
		". Also, you " + strings.ToLower(directive(c.dicts.Recall[rec.RecallLevel])) +
		" " + directive(c.dicts.Dazed[rec.DazedLevel])

	p.SentenceLimit = DefaultSentenceLimit
	if limit, ok := c.dicts.SentenceLimit[rec.Personality]; ok && limit != "" {
		p.SentenceLimit = limit
	}

	rec.Persona = p
	log.Printf("[INFO] Compiled persona for case %s (cefr=%s, personality=%s, recall=%s, dazed=%s)",
		rec.CaseID, rec.CEFR, rec.Personality, rec.RecallLevel, rec.DazedLevel)
	return nil
}

// Validate checks every axis selector against its permitted values.
func (c *Compiler) Validate(rec *models.PatientRecord) error {
	axes := []struct {
		field   string
		value   string
		allowed []string
	}{
		{"cefr", rec.CEFR, orderedKeys(cefrLevels, c.dicts.CEFR)},
		{"personality", rec.Personality, sortedKeys(c.dicts.Personality)},
		{"recall_level", rec.RecallLevel, sortedKeys(c.dicts.Recall)},
		{"dazed_level", rec.DazedLevel, orderedKeys(dazedLevels, c.dicts.Dazed)},
	}

	for _, a := range axes {
		if !lo.Contains(a.allowed, a.value) {
			return models.InvalidChoice(a.field, a.value, a.allowed)
		}
	}
	return nil
}

func (c *Compiler) renderCEFR(rec *models.PatientRecord, p *models.Persona) {
	idx := lo.IndexOf(cefrLevels, rec.CEFR)
	vocab := rec.Vocabulary[rec.CEFR]

	p.UnderstandWords = c.sample(vocab.Understood)
	p.MisunderstandWords = c.sample(vocab.Misunderstood)
	p.UnderstandMedWords = c.sample(vocab.Medical)
	if idx+1 < len(cefrLevels) {
		p.MisunderstandMedWords = c.sample(rec.Vocabulary[cefrLevels[idx+1]].Medical)
	}

	replacer := strings.NewReplacer(
		"{understand_words}", p.UnderstandWords,
		"{misunderstand_words}", p.MisunderstandWords,
		"{understand_med_words}", p.UnderstandMedWords,
		"{misunderstand_med_words}", p.MisunderstandMedWords,
	)
	p.CEFRText = "\n\t\t" + replacer.Replace(strings.Join(body(c.dicts.CEFR[rec.CEFR]), "\n\t\t\t"))
}

func (c *Compiler) renderPersonality(personality string) string {
	text := "\n\t\t" + strings.Join(body(c.dicts.Personality[personality]), "\n\t\t")
	if personality != models.DefaultPersonality {
		text += personalityEmphasis
	}
	return text
}

// renderDazed describes a starting dazed level that fades, phase by phase,
// down to normal.
func (c *Compiler) renderDazed(level string) string {
	if level == "normal" {
		return capitalize(level) + "\n\t\t" + strings.Join(body(c.dicts.Dazed[level]), "\n\t\t")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(dazedNarrative, level))
	for i := lo.IndexOf(dazedLevels, level); i < len(dazedLevels); i++ {
		sb.WriteString(fmt.Sprintf("\n\t%s Dazedness (%s Phase)\n\t\t", capitalize(dazedLevels[i]), capitalize(dazedPhases[i])))
		sb.WriteString(strings.Join(body(c.dicts.Dazed[dazedLevels[i]]), "\n\t\t"))
	}
	sb.WriteString(dazedNote)
	return sb.String()
}

func (c *Compiler) sample(words []string) string {
	if len(words) > c.wordSample {
		words = words[:c.wordSample]
	}
	return strings.Join(words, ", ")
}

func directive(template string) string {
	return strings.SplitN(template, bodySeparator, 2)[0]
}

func body(template string) []string {
	lines := strings.Split(template, bodySeparator)
	return lines[1:]
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func sortedKeys(m map[string]string) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

func orderedKeys(order []string, m map[string]string) []string {
	return lo.Filter(order, func(k string, _ int) bool {
		_, ok := m[k]
		return ok
	})
}
