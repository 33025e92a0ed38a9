package catalog

const otherSymptomsQuestion = "Any other symptoms I should know about?"

var defaultEntries = []Entry{
	{
		Diagnosis: "Pneumonia",
		Questions: []string{
			"Are you experiencing chest pain?",
			"Are you experiencing shortness of breath?",
			"Do you have a fever?",
			"Do you have coughing?",
			otherSymptomsQuestion,
		},
		Symptoms: []string{"cough", "fever", "shortness of breath"},
	},
	{
		Diagnosis: "Myocardial infarction",
		Questions: []string{
			"Are you experiencing chest pain?",
			"Is the pain radiating to your left arm?",
			"Do you feel shortness of breath?",
			"Do you have sweating?",
			otherSymptomsQuestion,
		},
		Symptoms: []string{"chest pain", "radiating", "arm", "sweating", "breath"},
	},
	{
		Diagnosis: "Urinary tract infection",
		Questions: []string{
			"Are you experiencing painful urination?",
			"Do you have lower abdominal pain?",
			"Do you have fever?",
			otherSymptomsQuestion,
		},
		Symptoms: []string{"burning", "pain", "frequency"},
	},
	{
		Diagnosis: "Intestinal obstruction",
		Questions: []string{
			"Are you experiencing abdominal pain?",
			"Do you have vomiting?",
			"Do you have constipation?",
			"Is your abdomen distended?",
			otherSymptomsQuestion,
		},
		Symptoms: []string{"vomiting", "constipation", "distension", "abdominal pain"},
	},
	{
		Diagnosis: "Cerebral infarction",
		Questions: []string{
			"Are you experiencing facial droop?",
			"Are you experiencing weakness on one side?",
			"Are you having trouble speaking?",
			"Do you have confusion?",
			otherSymptomsQuestion,
		},
		Symptoms: []string{"facial droop", "confusion", "weakness", "slurred speech"},
	},
}
