package llm

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"patientsim/models"
	"patientsim/services/interview"
)

const DefaultTopKDiagnosis = 5

type differentialInput struct {
	Diagnoses []string `json:"diagnoses" jsonschema:"required,description=Differential diagnoses ordered from most to least likely"`
}

// DoctorAgent interviews the patient through a chat model. It shares the
// session's inference budget with the scripted doctor.
type DoctorAgent struct {
	backend   Backend
	topK      int
	age       string
	sex       string
	diagnosis string
	symptoms  []string

	greeted  bool
	messages []models.Message
	tokens   models.TokenLog
}

func NewDoctorAgent(backend Backend, rec *models.PatientRecord, topK int) *DoctorAgent {
	if topK <= 0 {
		topK = DefaultTopKDiagnosis
	}
	return &DoctorAgent{
		backend:   backend,
		topK:      topK,
		age:       strconv.Itoa(rec.Age),
		sex:       rec.Sex,
		diagnosis: rec.Diagnosis,
		symptoms:  rec.Symptoms,
	}
}

// Ask opens with a fixed greeting, then asks one model-generated question per
// inference until the budget runs out.
func (a *DoctorAgent) Ask(ctx context.Context, s *interview.Session) (string, error) {
	if !a.greeted {
		a.greeted = true
		a.messages = append(a.messages, models.Message{Role: RoleAssistant, Content: DoctorGreeting})
		return DoctorGreeting, nil
	}
	if s.Remaining() == 0 {
		log.Printf("[INFO] Doctor agent used all %d inferences in session %s", s.Budget(), s.ID)
		return interview.ClosingMessage, nil
	}

	s.CountInference()
	system, err := a.systemPrompt(s)
	if err != nil {
		return "", err
	}

	completion, err := a.backend.Generate(ctx, Request{System: system, Messages: a.messages})
	if err != nil {
		return "", fmt.Errorf("failed to generate doctor question: %w", err)
	}

	question := strings.TrimSpace(completion.Text)
	a.tokens.Add(completion.Usage.PromptTokens, completion.Usage.CompletionTokens, completion.Usage.TotalTokens)
	a.messages = append(a.messages, models.Message{Role: RoleAssistant, Content: question})
	return question, nil
}

func (a *DoctorAgent) RecordAnswer(s *interview.Session, answer string) {
	s.Answers = append(s.Answers, answer)
	a.messages = append(a.messages, models.Message{Role: RoleUser, Content: answer})
}

func (a *DoctorAgent) FinalDiagnosis(_ float64, known []string) models.DiagnosisVerdict {
	return interview.Verdict(a.diagnosis, a.symptoms, known)
}

// Differential asks the model for its ranked differential diagnosis, capped
// at the configured top-k.
func (a *DoctorAgent) Differential(ctx context.Context) ([]string, error) {
	prompt, err := fillTemplate(differentialPrompt, map[string]string{"top_k_diagnosis": strconv.Itoa(a.topK)})
	if err != nil {
		return nil, err
	}
	messages := append(a.Messages(), models.Message{Role: RoleUser, Content: prompt})

	completion, err := a.backend.Generate(ctx, Request{
		System:   "You are a doctor summarising a consultation you have just finished.",
		Messages: messages,
		Tool: &ToolSpec{
			Name:        "submit_differential",
			Description: "Submit the ranked differential diagnosis for the patient",
			Schema:      schemaFor[differentialInput](),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate differential: %w", err)
	}
	a.tokens.Add(completion.Usage.PromptTokens, completion.Usage.CompletionTokens, completion.Usage.TotalTokens)

	input, err := decodeToolInput[differentialInput](completion)
	if err != nil {
		return nil, err
	}
	if len(input.Diagnoses) > a.topK {
		input.Diagnoses = input.Diagnoses[:a.topK]
	}
	return input.Diagnoses, nil
}

func (a *DoctorAgent) systemPrompt(s *interview.Session) (string, error) {
	system, err := fillTemplate(doctorSystemPrompt, map[string]string{
		"age":             a.age,
		"sex":             a.sex,
		"total_idx":       strconv.Itoa(s.Budget()),
		"curr_idx":        strconv.Itoa(s.Inferences()),
		"remain_idx":      strconv.Itoa(s.Remaining()),
		"top_k_diagnosis": strconv.Itoa(a.topK),
	})
	if err != nil {
		return "", fmt.Errorf("failed to build doctor prompt: %w", err)
	}
	return system, nil
}

func (a *DoctorAgent) Messages() []models.Message {
	return append([]models.Message(nil), a.messages...)
}

func (a *DoctorAgent) Tokens() models.TokenLog { return a.tokens }
