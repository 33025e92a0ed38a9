package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	DefaultPersonality = "plain"
	DefaultCEFR        = "B"
	DefaultRecallLevel = "normal"
	DefaultDazedLevel  = "normal"
)

// CaseID accepts both JSON strings and numbers, since admission ids arrive
// either way depending on the export.
type CaseID string

func (c *CaseID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = CaseID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("case id must be a string or number: %w", err)
	}
	*c = CaseID(n.String())
	return nil
}

type PresentIllness struct {
	ChiefComplaint string `json:"chief_complaint,omitempty"`
	HPI            string `json:"hpi,omitempty"`
}

// PatientInput is the record as it arrives from outside. Required fields are
// pointers so that absence can be told apart from a zero value.
type PatientInput struct {
	HadmID         *CaseID         `json:"hadm_id"`
	Diagnosis      *string         `json:"diagnosis"`
	Age            *int            `json:"age"`
	Sex            *string         `json:"sex"`
	Symptoms       []string        `json:"symptoms,omitempty"`
	PresentIllness *PresentIllness `json:"present_illness,omitempty"`
	Personality    string          `json:"personality,omitempty"`
	CEFR           string          `json:"cefr,omitempty"`
	RecallLevel    string          `json:"recall_level,omitempty"`
	DazedLevel     string          `json:"dazed_level,omitempty"`
}

// LevelVocabulary holds the words sampled for one CEFR level.
type LevelVocabulary struct {
	Understood    []string `json:"understood"`
	Misunderstood []string `json:"misunderstood"`
	Medical       []string `json:"medical"`
}

type PatientRecord struct {
	CaseID                  string   `json:"hadm_id"`
	Diagnosis               string   `json:"diagnosis"`
	Age                     int      `json:"age"`
	Sex                     string   `json:"sex"`
	Symptoms                []string `json:"symptoms"`
	ChiefComplaint          string   `json:"chief_complaint"`
	HistoryOfPresentIllness string   `json:"history_present_illness"`

	Personality string `json:"personality"`
	CEFR        string `json:"cefr"`
	RecallLevel string `json:"recall_level"`
	DazedLevel  string `json:"dazed_level"`

	Vocabulary map[string]LevelVocabulary `json:"vocabulary,omitempty"`
	Split      string                     `json:"split,omitempty"`

	Persona *Persona `json:"persona,omitempty"`
}

// Persona is the rendered behavioural profile produced by the persona compiler.
type Persona struct {
	CEFR        string `json:"cefr_option"`
	Personality string `json:"personality_option"`
	RecallLevel string `json:"recall_level_option"`
	DazedLevel  string `json:"dazed_level_option"`

	UnderstandWords       string `json:"understand_words"`
	MisunderstandWords    string `json:"misunderstand_words"`
	UnderstandMedWords    string `json:"understand_med_words"`
	MisunderstandMedWords string `json:"misunderstand_med_words"`

	CEFRText        string `json:"cefr"`
	PersonalityText string `json:"personality"`
	RecallText      string `json:"memory_recall_level"`
	DazedText       string `json:"dazed_level"`
	Reminder        string `json:"reminder"`
	SentenceLimit   string `json:"sent_limit"`
}

// Fields flattens the record and its persona into the placeholder set used by
// the LLM prompt templates.
func (p *PatientRecord) Fields() map[string]string {
	fields := map[string]string{
		"hadm_id":                 p.CaseID,
		"diagnosis":               p.Diagnosis,
		"age":                     strconv.Itoa(p.Age),
		"sex":                     p.Sex,
		"chief_complaint":         p.ChiefComplaint,
		"history_present_illness": p.HistoryOfPresentIllness,
		"hpi":                     p.HistoryOfPresentIllness,
	}
	if p.Persona != nil {
		fields["cefr_option"] = p.Persona.CEFR
		fields["personality_option"] = p.Persona.Personality
		fields["recall_level_option"] = p.Persona.RecallLevel
		fields["dazed_level_option"] = p.Persona.DazedLevel
		fields["understand_words"] = p.Persona.UnderstandWords
		fields["misunderstand_words"] = p.Persona.MisunderstandWords
		fields["understand_med_words"] = p.Persona.UnderstandMedWords
		fields["misunderstand_med_words"] = p.Persona.MisunderstandMedWords
		fields["cefr"] = p.Persona.CEFRText
		fields["personality"] = p.Persona.PersonalityText
		fields["memory_recall_level"] = p.Persona.RecallText
		fields["dazed_level"] = p.Persona.DazedText
		fields["reminder"] = p.Persona.Reminder
		fields["sent_limit"] = p.Persona.SentenceLimit
	}
	return fields
}
